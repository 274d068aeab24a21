// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testpdf provides a shared one-page PDF fixture for tests that need
// real parseable page content.
package testpdf

import (
	"encoding/base64"
	"testing"
)

// minimalBase64 is a one-page PDF small enough to inline; pdfcpu accepts it
// under relaxed validation.
const minimalBase64 = "JVBERi0xLjMKJeLjz9MKMSAwIG9iago8PAovVHlwZSAvUGFnZXMKL0NvdW50IDEKL0tpZHMgWyAz" +
	"IDAgUiBdCj4+CmVuZG9iagoyIDAgb2JqCjw8Ci9Qcm9kdWNlciAoUHlQREYyKQovTmVlZEFwcGVh" +
	"cmFuY2VzIHRydWUKPj4KZW5kb2JqCjMgMCBvYmoKPDwKL1R5cGUgL1BhZ2UKL1BhcmVudCAxIDAg" +
	"UgovUmVzb3VyY2VzIDw8Cj4+Ci9NZWRpYUJveCBbIDAgMCA1OTUgODQyIF0KPj4KZW5kb2JqCjQg" +
	"MCBvYmoKPDwKL1R5cGUgL0NhdGFsb2cKL1BhZ2VzIDEgMCBSCi9BY3JvRm9ybSAyIDAgUgo+Pgpl" +
	"bmRvYmoKeHJlZgowIDUKMDAwMDAwMDAwMCA2NTUzNSBmIAowMDAwMDAwMDE1IDAwMDAwIG4gCjAw" +
	"MDAwMDAwNzQgMDAwMDAgbiAKMDAwMDAwMDEzNiAwMDAwMCBuIAowMDAwMDAwMjI2IDAwMDAwIG4g" +
	"CnRyYWlsZXIKPDwKL1NpemUgNQovUm9vdCA0IDAgUgovSW5mbyAyIDAgUgo+PgpzdGFydHhyZWYK" +
	"MjkxCiUlRU9GCg=="

// Minimal returns the decoded fixture bytes.
func Minimal(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(minimalBase64)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
