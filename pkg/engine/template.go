package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// templatePattern matches {{ $json.<node>.<field> }} tokens with optional
// whitespace. Only the simple two-segment path is recognized; anything else
// is left untouched.
var templatePattern = regexp.MustCompile(`\{\{\s*\$json\.([A-Za-z0-9_-]+)\.([A-Za-z0-9_-]+)\s*\}\}`)

// resolveTemplate substitutes every recognized token in input with the string
// form of the referenced node result field. A miss - unknown node or absent
// field - leaves the original token text verbatim; resolution never fails.
func resolveTemplate(input string, ectx *models.ExecutionContext) string {
	if input == "" || !strings.Contains(input, "{{") {
		return input
	}

	return templatePattern.ReplaceAllStringFunc(input, func(token string) string {
		groups := templatePattern.FindStringSubmatch(token)
		if groups == nil {
			return token
		}

		nodeKey, field := groups[1], groups[2]

		data, ok := ectx.NodeData[nodeKey]
		if !ok {
			return token
		}

		value, ok := data[field]
		if !ok {
			return token
		}

		return stringify(value)
	})
}

// stringify renders a result value for substitution into a prompt.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
