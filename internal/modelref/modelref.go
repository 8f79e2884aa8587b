// Package modelref derives the model identifier, model name and artifact
// paths from a repository reference. Everything here is pure string work.
package modelref

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReference is returned by Parse when no model name can be derived.
var ErrInvalidReference = errors.New("invalid repository reference")

// Ref is a parsed repository reference.
type Ref struct {
	URL      string // as given
	ID       string // owner/name
	Name     string // final segment of ID, original case
	FP16Path string
}

// ExtractModelID returns the last two '/'-separated segments of ref joined by
// '/'. References with fewer segments come back as-is.
func ExtractModelID(ref string) string {
	parts := strings.Split(ref, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}

// ModelName returns the substring after the final '/' of id.
func ModelName(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// FP16Path is where the converter writes the intermediate file:
// <Name>/<name-lower>.fp16.bin
func FP16Path(name string) string {
	return name + "/" + strings.ToLower(name) + ".fp16.bin"
}

// QuantizedPath is where the quantizer writes the result:
// <Name>/<name-lower>.<METHOD>.gguf
func QuantizedPath(name, method string) string {
	return name + "/" + strings.ToLower(name) + "." + strings.ToUpper(method) + ".gguf"
}

// Parse derives a Ref from ref. Only an empty model name is rejected (empty
// input or a trailing slash); anything else passes through unvalidated.
func Parse(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	id := ExtractModelID(ref)
	name := ModelName(id)
	if name == "" {
		return Ref{}, fmt.Errorf("%w: %q has no model name", ErrInvalidReference, ref)
	}
	return Ref{URL: ref, ID: id, Name: name, FP16Path: FP16Path(name)}, nil
}

// OutputPath is the quantized artifact path for method.
func (r Ref) OutputPath(method string) string { return QuantizedPath(r.Name, method) }
