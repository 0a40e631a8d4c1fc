package claude

import "encoding/json"

// Wire payload shapes for the Messages streaming protocol,
// discriminated by the "type" field.
type wireEvent struct {
	Type         string            `json:"type"`
	Index        int               `json:"index"`
	ContentBlock *wireContentBlock `json:"content_block"`
	Delta        *wireDelta        `json:"delta"`
	Message      *wireMessageInfo  `json:"message"`
	Error        *wireError        `json:"error"`
}

type wireContentBlock struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	PartialJSON string `json:"partial_json"`
}

type wireMessageInfo struct {
	StopReason string `json:"stop_reason"`
}

type wireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// protocolEvent is the closed set of decoded stream events. Keeping it
// a sealed sum type means every consumer switches exhaustively and new
// wire kinds surface as unknownEvent instead of being mishandled.
type protocolEvent interface{ protocolEvent() }

// blockStart opens a content block. Only tool_use blocks carry id/name.
type blockStart struct {
	blockType string
	id        string
	name      string
}

// textDelta appends to the reply text, regardless of block state.
type textDelta struct{ text string }

// jsonDelta carries a fragment of the open tool block's argument JSON.
type jsonDelta struct{ partial string }

// blockStop closes the currently open block, if any.
type blockStop struct{}

// messageDelta is recognized but has no effect.
type messageDelta struct{}

// messageStop terminates the stream, optionally with an explicit reason.
type messageStop struct{ stopReason string }

// errorEvent is a server-reported failure that aborts the whole call.
type errorEvent struct {
	errType string
	message string
}

// unknownEvent is any structurally valid payload of a kind this client
// does not understand. It has no effect.
type unknownEvent struct{ kind string }

func (blockStart) protocolEvent()   {}
func (textDelta) protocolEvent()    {}
func (jsonDelta) protocolEvent()    {}
func (blockStop) protocolEvent()    {}
func (messageDelta) protocolEvent() {}
func (messageStop) protocolEvent()  {}
func (errorEvent) protocolEvent()   {}
func (unknownEvent) protocolEvent() {}

// decodeEvent parses one frame payload into a protocol event.
// ok is false when the payload is not valid JSON; the caller drops such
// frames silently since the wire protocol may carry event kinds newer
// than this client.
func decodeEvent(payload string) (protocolEvent, bool) {
	var ev wireEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, false
	}

	switch ev.Type {
	case "content_block_start":
		if ev.ContentBlock == nil {
			return unknownEvent{kind: ev.Type}, true
		}
		return blockStart{
			blockType: ev.ContentBlock.Type,
			id:        ev.ContentBlock.ID,
			name:      ev.ContentBlock.Name,
		}, true

	case "content_block_delta":
		if ev.Delta == nil {
			return unknownEvent{kind: ev.Type}, true
		}
		switch ev.Delta.Type {
		case "text_delta":
			return textDelta{text: ev.Delta.Text}, true
		case "input_json_delta":
			return jsonDelta{partial: ev.Delta.PartialJSON}, true
		default:
			return unknownEvent{kind: ev.Type + "/" + ev.Delta.Type}, true
		}

	case "content_block_stop":
		return blockStop{}, true

	case "message_delta":
		return messageDelta{}, true

	case "message_stop":
		var reason string
		if ev.Message != nil {
			reason = ev.Message.StopReason
		}
		return messageStop{stopReason: reason}, true

	case "error":
		if ev.Error == nil {
			return unknownEvent{kind: ev.Type}, true
		}
		return errorEvent{errType: ev.Error.Type, message: ev.Error.Message}, true

	default:
		return unknownEvent{kind: ev.Type}, true
	}
}
