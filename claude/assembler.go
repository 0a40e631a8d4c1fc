package claude

import (
	"encoding/json"
	"log/slog"
	"strings"

	writecraft "github.com/writecraft/writecraft-go"
)

// openToolUse accumulates one in-flight tool_use block. At most one
// block is open at a time.
type openToolUse struct {
	id        string
	name      string
	inputJSON strings.Builder
}

// assembler folds decoded protocol events into the final response while
// pushing incremental notifications to the sink. Each call gets a fresh
// assembler; it is not safe for concurrent use.
type assembler struct {
	sink   writecraft.Sink
	logger *slog.Logger

	text       strings.Builder
	toolCalls  []writecraft.ToolCall
	stopReason string
	current    *openToolUse
	done       bool
}

func newAssembler(sink writecraft.Sink, logger *slog.Logger) *assembler {
	return &assembler{sink: guardSink{sink}, logger: logger}
}

// handle applies one event. The returned error is non-nil only for
// server error events, which abort the whole call.
func (a *assembler) handle(ev protocolEvent) error {
	switch e := ev.(type) {
	case blockStart:
		if e.blockType != writecraft.BlockTypeToolUse {
			break
		}
		if a.current != nil {
			// Protocol violation: a second tool block opened before the
			// previous one stopped. The newer block wins.
			a.logger.Warn("tool_use block opened while another was active",
				"open_id", a.current.id, "new_id", e.id)
		}
		a.current = &openToolUse{id: e.id, name: e.name}

	case textDelta:
		a.text.WriteString(e.text)
		a.sink.OnChunk(writecraft.StreamChunk{Chunk: e.text})

	case jsonDelta:
		if a.current == nil {
			a.logger.Debug("input_json_delta with no open tool_use block, dropping")
			break
		}
		a.current.inputJSON.WriteString(e.partial)

	case blockStop:
		if a.current == nil {
			break
		}
		call := writecraft.ToolCall{
			ID:    a.current.id,
			Name:  a.current.name,
			Input: a.parseToolInput(a.current.inputJSON.String()),
		}
		a.current = nil
		a.toolCalls = append(a.toolCalls, call)
		a.sink.OnToolUse(writecraft.ToolUseEvent{ID: call.ID, Name: call.Name, Input: call.Input})

	case messageStop:
		if e.stopReason != "" {
			a.stopReason = e.stopReason
		}
		a.done = true
		a.sink.OnChunk(writecraft.StreamChunk{Done: true})
		a.sink.OnStop(writecraft.MessageStopEvent{StopReason: a.finalStopReason()})

	case errorEvent:
		a.sink.OnError(writecraft.StreamError{Error: e.errType + ": " + e.message})
		return &writecraft.APIError{
			Type:      e.errType,
			Message:   e.message,
			Retryable: e.errType == "overloaded_error",
		}

	case messageDelta, unknownEvent:
		// Recognized, no effect.
	}
	return nil
}

// parseToolInput parses the accumulated argument JSON for one tool call.
// A buffer that never became a valid JSON object yields an empty object;
// the call is still reported so the conversation can continue.
func (a *assembler) parseToolInput(raw string) map[string]interface{} {
	if raw == "" {
		return map[string]interface{}{}
	}
	var input map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		a.logger.Debug("tool input JSON did not parse, substituting empty object", "error", err)
		return map[string]interface{}{}
	}
	if input == nil {
		return map[string]interface{}{}
	}
	return input
}

// response builds the final aggregate. Valid whether the stream ended
// with an explicit message_stop or at EOF.
func (a *assembler) response() *writecraft.AssistantResponse {
	return &writecraft.AssistantResponse{
		Text:       a.text.String(),
		ToolCalls:  a.toolCalls,
		StopReason: a.finalStopReason(),
	}
}

// finalStopReason resolves the stop reason: an explicit server-supplied
// reason always wins; otherwise tool_use when any tool call completed,
// else end_turn.
func (a *assembler) finalStopReason() string {
	if a.stopReason != "" {
		return a.stopReason
	}
	if len(a.toolCalls) > 0 {
		return writecraft.StopReasonToolUse
	}
	return writecraft.StopReasonEndTurn
}

// guardSink shields the decode loop from the observer: a nil sink is a
// no-op, and a panic inside a callback is swallowed so it cannot abort
// the stream.
type guardSink struct {
	sink writecraft.Sink
}

func (g guardSink) OnChunk(c writecraft.StreamChunk) {
	g.deliver(func(s writecraft.Sink) { s.OnChunk(c) })
}

func (g guardSink) OnToolUse(t writecraft.ToolUseEvent) {
	g.deliver(func(s writecraft.Sink) { s.OnToolUse(t) })
}

func (g guardSink) OnStop(m writecraft.MessageStopEvent) {
	g.deliver(func(s writecraft.Sink) { s.OnStop(m) })
}

func (g guardSink) OnError(e writecraft.StreamError) {
	g.deliver(func(s writecraft.Sink) { s.OnError(e) })
}

func (g guardSink) deliver(fn func(writecraft.Sink)) {
	if g.sink == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn(g.sink)
}
