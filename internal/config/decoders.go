package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DecoderFor returns the Decoder for a file name based on its extension.
func DecoderFor(name string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSONDecoder{}, nil
	case ".hcl":
		return HCLDecoder{}, nil
	case ".toml":
		return TOMLDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", name)
	}
}

// JSONDecoder decodes a JSON object.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(name string, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", name, err)
	}
	if m == nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: expected an object", name)
	}
	return m, nil
}

// HCLDecoder decodes a body of top-level attributes, for example:
//
//	version = "any"
//	html    = ["index.html"]
//	package = { name = "app" }
//
// Expressions are evaluated without variables or functions.
type HCLDecoder struct{}

// Decode implements Decoder.
func (HCLDecoder) Decode(name string, data []byte) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", name, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}

	m := make(map[string]any, len(attrs))
	for key, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate '%s' in %s: %w", key, name, diags)
		}
		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to convert '%s' in %s: %w", key, name, err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		m[key] = v
	}
	return m, nil
}

// TOMLDecoder decodes a TOML document.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(name string, data []byte) (map[string]any, error) {
	m := make(map[string]any)
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse TOML file %s: %w", name, err)
	}
	return m, nil
}
