package writecraft

// Message represents a single message in the conversation.
type Message struct {
	// Role is either "user" or "assistant"
	Role string `json:"role"`

	// Content is the list of content blocks for this message
	Content []ContentBlock `json:"content"`
}

// NewUserMessage creates a user message from content blocks.
func NewUserMessage(blocks ...ContentBlock) Message {
	return Message{Role: "user", Content: blocks}
}

// NewUserTextMessage creates a user message holding a single text block.
func NewUserTextMessage(text string) Message {
	return NewUserMessage(NewTextBlock(text))
}

// NewAssistantMessage creates an assistant message from content blocks.
func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: "assistant", Content: blocks}
}

// Tool describes a function the model can call.
// InputSchema is a JSON Schema object defining the tool's arguments.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"input_schema"`
}
