// Package extract pulls readable text out of attachment bytes.
//
// Extraction is dispatched on the filename extension through a Registry.
// Only PDF and DOCX are understood by default; every other file type yields
// the Unsupported sentinel without inspecting its bytes.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
)

// Unsupported is returned for file types without an extractor.
const Unsupported = "Unsupported or no text extraction for this file type."

// ErrParse marks documents that could not be parsed.
var ErrParse = errors.New("document parse failed")

// Extractor turns document bytes into text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(data []byte) (string, error)

// Extract calls f(data).
func (f ExtractorFunc) Extract(data []byte) (string, error) {
	return f(data)
}

// Registry maps lower-case file extensions (with the leading dot) to extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]Extractor{}}
}

// Default returns a registry handling .pdf and .docx.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".pdf", PDF{})
	r.Register(".docx", DOCX{})
	return r
}

// Register associates ext with e. The extension is matched case-insensitively
// and a missing leading dot is added.
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.byExt[ext] = e
}

// Lookup returns the extractor registered for filename's extension.
func (r *Registry) Lookup(filename string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return e, ok
}

// Extract returns the text of data according to filename's extension, or
// Unsupported when no extractor is registered. Parse failures are returned
// as errors wrapping ErrParse.
func (r *Registry) Extract(filename string, data []byte) (string, error) {
	e, ok := r.Lookup(filename)
	if !ok {
		return Unsupported, nil
	}
	return e.Extract(data)
}
