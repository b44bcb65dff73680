package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const evaluationSchema = `{
  "type": "object",
  "required": ["rating", "issue", "feedback"],
  "properties": {
    "rating": {"type": "integer"},
    "issue": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "feedback": {"type": "array", "minItems": 1, "items": {"type": "string"}}
  }
}`

var evaluationValidator = jsonschema.MustCompileString("evaluation.schema.json", evaluationSchema)

// FallbackPayload is returned whenever the model output cannot be decoded.
func FallbackPayload() EvaluationPayload {
	return EvaluationPayload{
		Rating:   1,
		Issue:    []string{"Invalid JSON"},
		Feedback: []string{"Please try again."},
	}
}

// ParseResult carries either the decoded payload or the fallback together with its cause.
type ParseResult struct {
	Payload  EvaluationPayload
	Fallback bool
	Err      error
}

// ParseEvaluation extracts the JSON object embedded in raw and decodes it.
// It never fails: undecodable input yields FallbackPayload with Fallback set.
// The rating is returned as the model produced it.
func ParseEvaluation(raw string) ParseResult {
	candidate := extractObject(raw)

	payload, err := decodePayload(candidate)
	if err != nil {
		return ParseResult{Payload: FallbackPayload(), Fallback: true, Err: err}
	}

	return ParseResult{Payload: payload}
}

func extractObject(raw string) string {
	cleaned := strings.TrimSpace(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end >= 0 && start < end {
		return cleaned[start : end+1]
	}
	return cleaned
}

func decodePayload(candidate string) (EvaluationPayload, error) {
	var document interface{}
	decoder := json.NewDecoder(strings.NewReader(candidate))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return EvaluationPayload{}, fmt.Errorf("decode evaluation json: %w", err)
	}
	if decoder.More() {
		return EvaluationPayload{}, fmt.Errorf("decode evaluation json: trailing data after object")
	}

	if err := evaluationValidator.Validate(document); err != nil {
		return EvaluationPayload{}, fmt.Errorf("validate evaluation json: %w", err)
	}

	var payload EvaluationPayload
	strict := json.NewDecoder(strings.NewReader(candidate))
	if err := strict.Decode(&payload); err != nil {
		return EvaluationPayload{}, fmt.Errorf("decode evaluation payload: %w", err)
	}

	return payload, nil
}
