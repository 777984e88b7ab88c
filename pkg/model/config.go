package model

import (
	"fmt"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Top-level keys of a description document.
const (
	KeyDepthMultiple = "depth_multiple"
	KeyWidthMultiple = "width_multiple"
	KeyBackbone      = "backbone"
	KeyHead          = "head"
	KeyKinds         = "kinds"
)

// FromMap builds a Config from a decoded document. Missing multipliers
// default to 1 and missing sequences to empty. Unknown keys are ignored.
//
// Layer entries are copied as-is; their shape is only checked by
// [Interpret]. Errors are returned for document-level problems only: a
// multiplier that is not a number, a backbone or head that is not a
// sequence, or an unknown kind name.
func FromMap(doc map[string]any) (*Config, error) {
	cfg := NewConfig()
	if doc == nil {
		return cfg, nil
	}

	var err error
	if cfg.DepthMultiple, err = multiplier(doc, KeyDepthMultiple); err != nil {
		return nil, err
	}
	if cfg.WidthMultiple, err = multiplier(doc, KeyWidthMultiple); err != nil {
		return nil, err
	}
	if cfg.Backbone, err = sequence(doc, KeyBackbone); err != nil {
		return nil, err
	}
	if cfg.Head, err = sequence(doc, KeyHead); err != nil {
		return nil, err
	}
	if cfg.Kinds, err = kinds(doc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func multiplier(doc map[string]any, key string) (float64, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 1, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must be a number, got %s", key, FormatValue(v))
	}
	return f, nil
}

func sequence(doc map[string]any, key string) ([]any, error) {
	switch v := doc[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s must be a sequence, got %T", key, v)
	}
}

func kinds(doc map[string]any) (map[string]Kind, error) {
	raw, ok := doc[KeyKinds]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s must be a mapping, got %T", KeyKinds, raw)
	}
	out := make(map[string]Kind, len(m))
	for module, v := range m {
		name := fmt.Sprint(v)
		k, ok := ParseKind(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown kind %q for module %s", name, module)
		}
		out[module] = k
	}
	return out, nil
}
