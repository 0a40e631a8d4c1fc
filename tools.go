package writecraft

import (
	"errors"
	"fmt"
)

// Built-in tool names for the writing assistant.
const (
	ToolUpdateConcept = "update_concept"
	ToolUpdateOutline = "update_outline"
	ToolReadDocument  = "read_document"
)

// Validate checks that a tool definition is complete enough to send.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if t.InputSchema == nil {
		return errors.New("tool input_schema is required")
	}
	return nil
}

// NewUpdateConceptTool creates the tool the model uses to revise the
// document's concept (title, argument, audience, tone).
func NewUpdateConceptTool() *Tool {
	return &Tool{
		Name:        ToolUpdateConcept,
		Description: "Update the working concept for the current document",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Working title for the piece",
				},
				"core_argument": map[string]interface{}{
					"type":        "string",
					"description": "The central argument or idea",
				},
				"audience": map[string]interface{}{
					"type":        "string",
					"description": "Who the piece is written for",
				},
				"tone": map[string]interface{}{
					"type":        "string",
					"description": "Desired tone of voice",
				},
			},
			"required": []string{"title", "core_argument"},
		},
	}
}

// NewUpdateOutlineTool creates the tool the model uses to propose a new
// outline as an ordered list of section prompts.
func NewUpdateOutlineTool() *Tool {
	return &Tool{
		Name:        ToolUpdateOutline,
		Description: "Replace the document outline with a new list of section prompts",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"prompts": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"title":           map[string]interface{}{"type": "string"},
							"description":     map[string]interface{}{"type": "string"},
							"estimated_words": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"title", "description"},
					},
				},
			},
			"required": []string{"prompts"},
		},
	}
}

// NewReadDocumentTool creates the tool the model uses to read the current
// document text.
func NewReadDocumentTool() *Tool {
	return &Tool{
		Name:        ToolReadDocument,
		Description: "Read the full text of the document being worked on",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}
}

// NewCustomTool creates a tool definition with a caller-supplied JSON schema.
func NewCustomTool(name, description string, inputSchema map[string]interface{}) (*Tool, error) {
	tool := &Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create tool %q: %w", name, err)
	}
	return tool, nil
}
