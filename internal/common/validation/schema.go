package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// mentionSchema describes the payload the Coral server delivers when this
// agent is mentioned in a thread.
const mentionSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"threadId": {"type": "string", "minLength": 1},
		"senderId": {"type": "string", "minLength": 1},
		"content": {"type": "string"},
		"timestamp": {"type": "integer"},
		"mentions": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["threadId", "senderId", "content"]
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var compiledMentionSchema = gojsonschema.NewStringLoader(mentionSchema)

// ValidateMention checks a raw mention payload against the expected schema.
func ValidateMention(payload []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(compiledMentionSchema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("mention schema validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for a specific field.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
