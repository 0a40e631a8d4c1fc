package writecraft

import "encoding/json"

// Block type constants
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"    // Tool invocation requested by the model
	BlockTypeToolResult = "tool_result" // Result sent back for a client-executed tool call
)

// ContentBlock represents one segment of a message's content.
// The Type field discriminates which of the remaining fields are meaningful:
//   - text: Text
//   - tool_use: ID, Name, Input
//   - tool_result: ToolUseID, Content, IsError
type ContentBlock struct {
	// Type indicates the block kind: "text", "tool_use", or "tool_result"
	Type string `json:"type"`

	// Text contains the text for text blocks
	Text string `json:"text,omitempty"`

	// ID identifies a tool_use block (e.g., "toolu_...")
	ID string `json:"id,omitempty"`

	// Name is the tool name for tool_use blocks
	Name string `json:"name,omitempty"`

	// Input contains the tool arguments for tool_use blocks
	Input json.RawMessage `json:"input,omitempty"`

	// ToolUseID links a tool_result block back to its tool_use block
	ToolUseID string `json:"tool_use_id,omitempty"`

	// Content contains the result text for tool_result blocks
	Content string `json:"content,omitempty"`

	// IsError marks a tool_result as a failed execution (optional)
	IsError *bool `json:"is_error,omitempty"`
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeText,
		Text: text,
	}
}

// NewToolUseBlock creates a tool_use content block from a completed tool call.
// Used when replaying an assistant turn that requested a tool.
func NewToolUseBlock(id, name string, input interface{}) (ContentBlock, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return ContentBlock{}, err
	}
	return ContentBlock{
		Type:  BlockTypeToolUse,
		ID:    id,
		Name:  name,
		Input: raw,
	}, nil
}

// NewToolResultBlock creates a tool_result content block.
// isError marks the result as a failed tool execution.
func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	block := ContentBlock{
		Type:      BlockTypeToolResult,
		ToolUseID: toolUseID,
		Content:   content,
	}
	if isError {
		block.IsError = &isError
	}
	return block
}

// IsToolUse returns true if this is a tool_use block.
func (b *ContentBlock) IsToolUse() bool {
	return b.Type == BlockTypeToolUse
}

// IsToolResult returns true if this is a tool_result block.
func (b *ContentBlock) IsToolResult() bool {
	return b.Type == BlockTypeToolResult
}
