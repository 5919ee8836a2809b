package docset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	keysync "github.com/reoring/keysync"
	hclsrc "github.com/reoring/keysync/source/hcl"
	yamlsrc "github.com/reoring/keysync/source/yaml"
)

// Format is a document format recognized by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatOf maps a file name to its Format.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".hcl":
		return FormatHCL, true
	}
	return "", false
}

// LoadFile reads and decodes the document at path, choosing the decoder by
// extension.
func LoadFile(path string, opt keysync.LoadOpt) (keysync.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data, opt)
}

// Decode decodes data as the format implied by name.
func Decode(name string, data []byte, opt keysync.LoadOpt) (keysync.Value, error) {
	format, ok := FormatOf(name)
	if !ok {
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(name))
	}
	// JSON enforces the size limit while streaming; the other decoders need
	// the whole input.
	if format != FormatJSON && opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, keysync.Issues{{Code: keysync.CodeTruncated, Pointer: "/", Message: "max bytes exceeded", Offset: opt.MaxBytes}}
	}
	switch format {
	case FormatYAML:
		return yamlsrc.Decode(data, opt)
	case FormatHCL:
		return hclsrc.Decode(data, name, opt)
	default:
		return keysync.DecodeJSON(data, opt)
	}
}
