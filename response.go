package writecraft

// Stop reason constants. The API may return additional values
// (e.g., "max_tokens", "stop_sequence"); these are the ones the
// library assigns itself.
const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// ToolCall is one completed tool invocation assembled from the stream.
type ToolCall struct {
	// ID is the tool use identifier assigned by the API
	ID string `json:"id"`

	// Name is the tool that was invoked
	Name string `json:"name"`

	// Input is the parsed tool arguments. An empty map when the
	// streamed argument JSON never parsed.
	Input map[string]interface{} `json:"input"`
}

// AssistantResponse is the final aggregate result of one streamed reply.
// It is consistent with everything already pushed to the Sink mid-stream.
type AssistantResponse struct {
	// Text is the cumulative text content across all text blocks
	Text string `json:"textContent"`

	// ToolCalls lists completed tool invocations in arrival order
	ToolCalls []ToolCall `json:"toolUses"`

	// StopReason indicates why generation ended. Defaults to "end_turn";
	// becomes "tool_use" when tool calls completed and the server sent no
	// explicit reason. A server-supplied reason always wins.
	StopReason string `json:"stopReason"`
}
