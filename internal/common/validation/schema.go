// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// webhookPayloadSchema accepts the several message and session key spellings
// that upstream chat frontends use. At least one message key must be present;
// session identifiers are optional and default server-side.
const webhookPayloadSchema = `{
	"type": "object",
	"properties": {
		"message":      {"type": "string"},
		"user_message": {"type": "string"},
		"text":         {"type": "string"},
		"content":      {"type": "string"},
		"session_id":   {"type": "string"},
		"sessionId":    {"type": "string"},
		"user_id":      {"type": "string"},
		"metadata":     {"type": "object"}
	},
	"anyOf": [
		{"required": ["message"]},
		{"required": ["user_message"]},
		{"required": ["text"]},
		{"required": ["content"]}
	],
	"additionalProperties": true
}`

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var webhookSchema = gojsonschema.NewStringLoader(webhookPayloadSchema)

// ValidateWebhookPayload checks a raw webhook body against the payload schema.
func ValidateWebhookPayload(raw []byte) (*Result, error) {
	res, err := gojsonschema.Validate(webhookSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return out, nil
}
