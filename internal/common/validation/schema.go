// Package validation checks request payloads against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SignupSchema validates /signup request bodies.
var SignupSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"username": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 64,
			"pattern":   "^[A-Za-z0-9._-]+$",
		},
		"email": map[string]interface{}{
			"type":   "string",
			"format": "email",
		},
		"password": map[string]interface{}{
			"type":      "string",
			"minLength": 8,
		},
	},
	"required":             []interface{}{"username", "email", "password"},
	"additionalProperties": false,
}

// LoginSchema validates /login request bodies.
var LoginSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"email": map[string]interface{}{
			"type":   "string",
			"format": "email",
		},
		"password": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
	},
	"required":             []interface{}{"email", "password"},
	"additionalProperties": false,
}

// ChatSessionSchema validates chat upsert request bodies.
var ChatSessionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"id":        map[string]interface{}{"type": "string", "minLength": 1},
		"title":     map[string]interface{}{"type": "string"},
		"createdAt": map[string]interface{}{"type": "string"},
		"updatedAt": map[string]interface{}{"type": "string"},
		"messages": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":   map[string]interface{}{"type": "string"},
					"role": map[string]interface{}{"type": "string", "enum": []interface{}{"user", "assistant"}},
					"text": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"role"},
			},
		},
	},
	"required": []interface{}{"id"},
}

// ChatCreateSchema is ChatSessionSchema without the id requirement; the
// server assigns an id when the client omits one.
var ChatCreateSchema = withoutRequired(ChatSessionSchema)

func withoutRequired(schema map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(schema))
	for k, v := range schema {
		if k == "required" {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate checks a decoded payload against a schema map and returns a
// single aggregated error message, or nil when valid.
func Validate(payload interface{}, schema map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(msgs, "; "))
}
