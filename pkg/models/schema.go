package models

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// JSON Schemas for the serialized graph wire format. Loaders validate
// persisted payloads against these before decoding, so a malformed column
// is rejected as a whole instead of being half-accepted.

const nodeListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "position", "data"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"type": {"type": "string"},
			"position": {
				"type": "object",
				"required": ["x", "y"],
				"properties": {
					"x": {"type": "number"},
					"y": {"type": "number"}
				}
			},
			"data": {
				"type": "object",
				"required": ["title", "content"],
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"completed": {"type": "boolean"},
					"current": {"type": "boolean"},
					"content": {
						"type": "object",
						"required": ["nodeType"],
						"properties": {
							"nodeType": {
								"type": "string",
								"enum": ["Trigger", "Action", "Condition", "Wait", "Email", "Notification"]
							}
						}
					}
				}
			}
		}
	}
}`

const edgeListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "source", "target"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"source": {"type": "string", "minLength": 1},
			"target": {"type": "string", "minLength": 1},
			"sourceHandle": {"type": "string"},
			"targetHandle": {"type": "string"},
			"label": {"type": "string"}
		}
	}
}`

const flowPathSchema = `{
	"type": "array",
	"items": {"type": "string", "minLength": 1}
}`

var (
	nodeListValidator = gojsonschema.NewStringLoader(nodeListSchema)
	edgeListValidator = gojsonschema.NewStringLoader(edgeListSchema)
	flowPathValidator = gojsonschema.NewStringLoader(flowPathSchema)
)

func validateAgainst(schema gojsonschema.JSONLoader, document string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("schema validation failed: %s", errs[0].String())
		}

		return fmt.Errorf("schema validation failed")
	}

	return nil
}
