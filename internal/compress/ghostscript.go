// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compress shrinks a merged PDF by piping it through Ghostscript.
// Compression is best-effort: a missing binary means skip, a failed run
// means keep the uncompressed document.
package compress

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates no Ghostscript binary is installed. Callers treat
// this as "compression unavailable", not as a failure.
var ErrNotFound = errors.New("ghostscript not found")

// RunError reports a Ghostscript invocation that started but exited non-zero
// or produced no output.
type RunError struct {
	Output string
	Err    error
}

func (e *RunError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("ghostscript failed: %v", e.Err)
	}
	return fmt.Sprintf("ghostscript failed: %v: %s", e.Err, msg)
}

func (e *RunError) Unwrap() error { return e.Err }

// gsBinaries lists candidate binary names, Unix first then Windows consoles.
var gsBinaries = []string{"gs", "gswin64c", "gswin32c"}

// ebookProfile is the fixed quality profile: aggressive image downsampling
// tuned for on-screen reading of scanned newspaper pages.
var ebookProfile = []string{
	"-sDEVICE=pdfwrite",
	"-dCompatibilityLevel=1.4",
	"-dPDFSETTINGS=/ebook",
	"-dDetectDuplicateImages=true",
	"-dDownsampleColorImages=true",
	"-dColorImageResolution=120",
	"-dReduceImageResolution=true",
	"-dCompressFonts=true",
	"-dSubsetFonts=true",
	"-dAutoRotatePages=/None",
	"-dNOPAUSE",
	"-dQUIET",
	"-dBATCH",
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

var defaultExec executor = &osExecutor{}

// Ghostscript invokes a detected gs binary with the ebook profile.
type Ghostscript struct {
	bin  string
	exec executor
}

// Name returns the detected binary name.
func (g *Ghostscript) Name() string { return g.bin }

// Detect locates a Ghostscript binary on PATH. Returns ErrNotFound when
// none of the known binary names resolve.
func Detect() (*Ghostscript, error) {
	return detect(defaultExec)
}

func detect(exec executor) (*Ghostscript, error) {
	for _, bin := range gsBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			return &Ghostscript{bin: bin, exec: exec}, nil
		}
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(gsBinaries, ", "))
}

// Compress rewrites the PDF through Ghostscript and returns the smaller
// result. When the rewrite is not smaller than the input the original bytes
// are returned unchanged, so the caller never loses quality for nothing.
func (g *Ghostscript) Compress(pdf []byte) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "peoples-daily-gs-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, "in.pdf")
	outPath := filepath.Join(workDir, "out.pdf")

	if err := os.WriteFile(inPath, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("writing input: %w", err)
	}

	args := make([]string, 0, len(ebookProfile)+2)
	args = append(args, ebookProfile...)
	args = append(args, "-sOutputFile="+outPath, inPath)

	out, err := g.exec.Run(g.bin, args...)
	if err != nil {
		return nil, &RunError{Output: string(out), Err: err}
	}

	optimized, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &RunError{Output: string(out), Err: fmt.Errorf("no output produced: %w", err)}
	}

	if len(optimized) == 0 || len(optimized) >= len(pdf) {
		return pdf, nil
	}
	return optimized, nil
}
