package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

// Format identifies a document encoding.
type Format string

// Supported document encodings.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// DetectFormat picks the encoding from a file extension.
// Anything other than .toml or .json is treated as YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseFormat converts a format name or MIME type into a Format.
func ParseFormat(s string) (Format, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	switch s {
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, true
	case "toml", "application/toml", "text/toml":
		return FormatTOML, true
	case "json", "application/json", "text/json":
		return FormatJSON, true
	}
	return "", false
}

// ReadSource reads a description file and detects its encoding.
func ReadSource(path string) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "model file %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, DetectFormat(path), nil
}

// ImportModel reads the description at path and converts it to a Config.
// The file is decoded using the encoding chosen by [DetectFormat].
func ImportModel(path string) (*model.Config, error) {
	data, format, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeModel(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadModel decodes a description from r. It does not close r.
func ReadModel(r io.Reader, format Format) (*model.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return DecodeModel(data, format)
}

// DecodeModel decodes a description document and converts it to a Config.
// An empty document is an empty description.
func DecodeModel(data []byte, format Format) (*model.Config, error) {
	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	return model.FromMap(doc)
}

// DecodeDocument decodes data into nested maps and slices. Mapping keys are
// strings, sequences are []any and integers are int in every encoding.
func DecodeDocument(data []byte, format Format) (map[string]any, error) {
	var (
		raw any
		err error
	)
	switch format {
	case FormatYAML, "":
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		var m map[string]any
		_, err = toml.Decode(string(data), &m)
		raw = m
	case FormatJSON:
		raw, err = decodeJSON(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", format)
	}

	switch doc := normalize(raw).(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "top level must be a mapping, got %T", doc)
	}
}

func decodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// normalize converts decoder-specific types into the shared representation.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}
