package blueprint

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed blueprint.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("blueprint.schema.json", schemaJSON)

// Decode parses a blueprint document, validating it against the blueprint
// schema first so malformed producer output is rejected with a precise error
// instead of being silently mangled by the lenient element decoding.
func Decode(data []byte) (*Blueprint, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse blueprint: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("blueprint schema: %w", err)
	}
	var bp Blueprint
	if err := json.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("decode blueprint: %w", err)
	}
	return &bp, nil
}

// Encode renders a blueprint back to its document form.
func Encode(bp *Blueprint) ([]byte, error) {
	return json.MarshalIndent(bp, "", "  ")
}
