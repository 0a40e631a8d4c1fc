package claude

import writecraft "github.com/writecraft/writecraft-go"

// Request bundles the caller-controlled parts of one generation call.
// Zero-value Model and MaxTokens fall back to the client defaults.
type Request struct {
	Messages  []writecraft.Message
	System    string
	Model     string
	MaxTokens int
	Tools     []writecraft.Tool
}

// messageRequest is the JSON body sent to the Messages endpoint.
// Streaming is always requested.
type messageRequest struct {
	Model     string               `json:"model"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system,omitempty"`
	Messages  []writecraft.Message `json:"messages"`
	Stream    bool                 `json:"stream"`
	Tools     []writecraft.Tool    `json:"tools,omitempty"`
}

func (c *Client) buildRequest(req Request) messageRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	return messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  req.Messages,
		Stream:    true,
		Tools:     req.Tools,
	}
}
