package codec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema constrains the shape of a decoded definition beyond the
// required-field checks: node specs need a type tag, connections need both
// endpoints. Node config stays an open object; its contents belong to the
// node type, not the editor.
const definitionSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"version": {"type": "integer", "minimum": 0},
		"graph": {
			"type": "object",
			"properties": {
				"nodes": {
					"type": "object",
					"additionalProperties": {
						"type": "object",
						"properties": {
							"type": {"type": "string", "minLength": 1},
							"config": {"type": "object"}
						},
						"required": ["type"]
					}
				},
				"connections": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"from": {"type": "string", "minLength": 1},
							"to": {"type": "string", "minLength": 1}
						},
						"required": ["from", "to"]
					}
				}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
	})

	if schemaErr != nil {
		return nil, fmt.Errorf("failed to compile definition schema: %w", schemaErr)
	}

	return compiledSchema, nil
}

// validateShape checks the normalized document against the definition schema
// and folds all violations into a single invalid-shape decode error.
func validateShape(document any) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &DecodeError{Kind: DecodeUnparsable, Err: err}
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		details = append(details, violation.String())
	}

	return &DecodeError{Kind: DecodeInvalidShape, Detail: strings.Join(details, "; ")}
}
