package writecraft

import (
	"fmt"
	"sync"
)

// ToolHandler executes one tool call and returns the result text sent
// back to the model as a tool_result block.
type ToolHandler func(input map[string]interface{}) (string, error)

// ToolRegistry maps tool names to their definitions and handlers.
// It is safe for concurrent use.
type ToolRegistry struct {
	mu       sync.RWMutex
	tools    map[string]*Tool
	handlers map[string]ToolHandler
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:    make(map[string]*Tool),
		handlers: make(map[string]ToolHandler),
	}
}

// Register adds a tool definition and its handler to the registry.
func (r *ToolRegistry) Register(tool *Tool, handler ToolHandler) error {
	if tool == nil {
		return fmt.Errorf("tool is required")
	}
	if err := tool.Validate(); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("handler is required for tool %s", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
	return nil
}

// Unregister removes a tool from the registry.
func (r *ToolRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return fmt.Errorf("tool %s is not registered", name)
	}

	delete(r.tools, name)
	delete(r.handlers, name)
	return nil
}

// IsRegistered checks if a tool is registered.
func (r *ToolRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Tools returns the registered tool definitions, for inclusion in a request.
func (r *ToolRegistry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, *t)
	}
	return tools
}

// Execute runs the handler for one assembled tool call and converts the
// outcome into a tool_result block ready to send back to the model.
// Handler failure is reported to the model (is_error), not to the caller.
func (r *ToolRegistry) Execute(call ToolCall) ContentBlock {
	r.mu.RLock()
	handler, exists := r.handlers[call.Name]
	r.mu.RUnlock()

	if !exists {
		return NewToolResultBlock(call.ID, fmt.Sprintf("unknown tool: %s", call.Name), true)
	}

	result, err := handler(call.Input)
	if err != nil {
		return NewToolResultBlock(call.ID, err.Error(), true)
	}
	return NewToolResultBlock(call.ID, result, false)
}
