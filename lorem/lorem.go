// Package lorem generates mock Messages API streams in the real wire
// format, for development and testing without an API key. The output
// is a byte-for-byte plausible SSE transcript: content_block_start,
// text and JSON deltas, block stops, and a terminal message_stop.
package lorem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	loremgen "github.com/bozaro/golorem"
)

// ToolCall describes a mock tool invocation to include in the stream.
// The input JSON is streamed in small fragments, the way the real API
// delivers it.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Options shape the generated stream.
type Options struct {
	// Words of lorem ipsum text to stream, one delta per word.
	// Defaults to 30. Zero text is allowed when ToolCalls are set.
	Words int

	// ToolCalls are emitted after the text block, in order.
	ToolCalls []ToolCall

	// StopReason is carried on the message_stop event. Empty omits the
	// message field entirely, like servers that send a bare stop.
	StopReason string

	// Error, when set, replaces message_stop with an error event of
	// this type and ErrorMessage.
	Error        string
	ErrorMessage string

	// OmitStop drops the terminal event so the stream ends at EOF.
	OmitStop bool
}

// Stream is one generated transcript.
type Stream struct {
	gen  *loremgen.Lorem
	opts Options
}

// New creates a stream generator.
func New(opts Options) *Stream {
	if opts.Words == 0 && len(opts.ToolCalls) == 0 {
		opts.Words = 30
	}
	return &Stream{gen: loremgen.New(), opts: opts}
}

func (s *Stream) text() string {
	var sb strings.Builder
	count := 0
	for count < s.opts.Words {
		sentence := s.gen.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		count += len(strings.Fields(sentence))
	}
	return strings.TrimSpace(sb.String())
}

// Events returns the ordered wire payloads (the JSON after "data: ")
// plus the full text the deltas add up to.
func (s *Stream) Events() (payloads []string, text string) {
	emit := func(v map[string]interface{}) {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("lorem: marshal event: %v", err))
		}
		payloads = append(payloads, string(raw))
	}

	emit(map[string]interface{}{
		"type":    "message_start",
		"message": map[string]interface{}{"role": "assistant"},
	})

	index := 0
	if s.opts.Words > 0 {
		text = s.text()
		emit(map[string]interface{}{
			"type":          "content_block_start",
			"index":         index,
			"content_block": map[string]interface{}{"type": "text"},
		})
		words := strings.Fields(text)
		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " "
			}
			emit(map[string]interface{}{
				"type":  "content_block_delta",
				"index": index,
				"delta": map[string]interface{}{"type": "text_delta", "text": delta},
			})
		}
		emit(map[string]interface{}{"type": "content_block_stop", "index": index})
		index++
	}

	for _, call := range s.opts.ToolCalls {
		id := call.ID
		if id == "" {
			id = fmt.Sprintf("toolu_lorem_%d", index)
		}
		emit(map[string]interface{}{
			"type":  "content_block_start",
			"index": index,
			"content_block": map[string]interface{}{
				"type": "tool_use",
				"id":   id,
				"name": call.Name,
			},
		})
		raw, err := json.Marshal(call.Input)
		if err != nil {
			panic(fmt.Sprintf("lorem: marshal tool input: %v", err))
		}
		// Fragment the JSON the way the real API does.
		for _, fragment := range fragments(string(raw), 7) {
			emit(map[string]interface{}{
				"type":  "content_block_delta",
				"index": index,
				"delta": map[string]interface{}{"type": "input_json_delta", "partial_json": fragment},
			})
		}
		emit(map[string]interface{}{"type": "content_block_stop", "index": index})
		index++
	}

	switch {
	case s.opts.Error != "":
		emit(map[string]interface{}{
			"type": "error",
			"error": map[string]interface{}{
				"type":    s.opts.Error,
				"message": s.opts.ErrorMessage,
			},
		})
	case s.opts.OmitStop:
	case s.opts.StopReason != "":
		emit(map[string]interface{}{
			"type":    "message_stop",
			"message": map[string]interface{}{"stop_reason": s.opts.StopReason},
		})
	default:
		emit(map[string]interface{}{"type": "message_stop"})
	}

	return payloads, text
}

// Transcript renders the whole stream as SSE bytes.
func (s *Stream) Transcript() ([]byte, string) {
	payloads, text := s.Events()
	var buf bytes.Buffer
	for _, payload := range payloads {
		buf.WriteString("event: message\n")
		buf.WriteString("data: ")
		buf.WriteString(payload)
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), text
}

// Reader returns the transcript as a reader, with the text it carries.
func (s *Stream) Reader() (io.Reader, string) {
	raw, text := s.Transcript()
	return bytes.NewReader(raw), text
}

func fragments(s string, size int) []string {
	if s == "" {
		return nil
	}
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	return append(out, s)
}
