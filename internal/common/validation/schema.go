// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names known to the route layer.
const (
	SchemaVacancyCreate = "vacancy_create"
	SchemaAgentCreate   = "agent_create"
	SchemaUserCreate    = "user_create"
	SchemaStatusUpdate  = "status_update"
	SchemaNotify        = "notify"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r *ValidationResult) ErrorString() string {
	if r.Valid {
		return ""
	}
	out := ""
	for i, e := range r.Errors {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return out
}

var thresholdsSchema = `{
	"type": "object",
	"properties": {
		"ideal":     {"type": "integer", "minimum": 0, "maximum": 100},
		"potential": {"type": "integer", "minimum": 0, "maximum": 100},
		"review":    {"type": "integer", "minimum": 0, "maximum": 100}
	},
	"required": ["ideal", "potential", "review"],
	"additionalProperties": false
}`

var schemas = map[string]string{
	SchemaVacancyCreate: `{
		"type": "object",
		"properties": {
			"title":          {"type": "string", "minLength": 1, "maxLength": 200},
			"description":    {"type": "string", "minLength": 1},
			"requiredSkills": {"type": "array", "items": {"type": "string", "minLength": 1}},
			"thresholds":     ` + thresholdsSchema + `,
			"aiAgentId":      {"type": "string"},
			"open":           {"type": "boolean"}
		},
		"required": ["title", "description"],
		"additionalProperties": false
	}`,
	SchemaAgentCreate: `{
		"type": "object",
		"properties": {
			"name":         {"type": "string", "minLength": 1, "maxLength": 100},
			"systemPrompt": {"type": "string", "minLength": 1},
			"thresholds":   ` + thresholdsSchema + `
		},
		"required": ["name", "systemPrompt"],
		"additionalProperties": false
	}`,
	SchemaUserCreate: `{
		"type": "object",
		"properties": {
			"email":    {"type": "string", "format": "email", "minLength": 3},
			"name":     {"type": "string", "minLength": 1, "maxLength": 100},
			"password": {"type": "string", "minLength": 8},
			"role":     {"type": "string", "enum": ["admin", "recruiter", "viewer"]}
		},
		"required": ["email", "name", "password", "role"],
		"additionalProperties": false
	}`,
	SchemaStatusUpdate: `{
		"type": "object",
		"properties": {
			"status": {"type": "string", "enum": ["applied", "screening", "interview", "evaluation", "offer", "hired", "rejected"]}
		},
		"required": ["status"],
		"additionalProperties": false
	}`,
	SchemaNotify: `{
		"type": "object",
		"properties": {
			"message": {"type": "string", "minLength": 1},
			"type":    {"type": "string", "enum": ["email", "whatsapp", "both"]}
		},
		"required": ["message", "type"],
		"additionalProperties": false
	}`,
}

var compiled = map[string]*gojsonschema.Schema{}

func init() {
	for name, raw := range schemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("invalid embedded schema %q: %v", name, err))
		}
		compiled[name] = schema
	}
}

// Validate checks a raw JSON payload against a named schema.
func Validate(schemaName string, payload []byte) (*ValidationResult, error) {
	schema, ok := compiled[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown schema: %s", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(body)", Message: "payload is not valid JSON"}},
		}, nil
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
