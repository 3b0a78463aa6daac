package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// workflowDocumentSchema validates the wire shape of an inbound workflow
// graph before it is handed to the engine. Structural ceilings and identifier
// rules stay with the engine's validator; this only rejects documents that do
// not parse into the expected shape at all.
const workflowDocumentSchema = `{
  "type": "object",
  "required": ["id", "nodes"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "agentId": {"type": "string"},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "enum": ["trigger", "ai_agent", "action", "tool"]},
          "disabled": {"type": "boolean"},
          "config": {"type": "object"},
          "agentConfig": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "target"],
        "properties": {
          "id": {"type": "string"},
          "source": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1}
        }
      }
    },
    "metadata": {"type": "object"}
  }
}`

var workflowSchema = gojsonschema.NewStringLoader(workflowDocumentSchema)

// validateWorkflowDocument checks raw JSON against the workflow graph schema
// and returns a readable list of violations.
func validateWorkflowDocument(raw []byte) error {
	result, err := gojsonschema.Validate(workflowSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("workflow document is not valid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("workflow document invalid: %s", strings.Join(details, "; "))
}
