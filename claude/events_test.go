package claude

import (
	"reflect"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    protocolEvent
		wantOK  bool
	}{
		{
			name:    "tool block start",
			payload: `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"update_concept"}}`,
			want:    blockStart{blockType: "tool_use", id: "toolu_1", name: "update_concept"},
			wantOK:  true,
		},
		{
			name:    "text block start",
			payload: `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
			want:    blockStart{blockType: "text"},
			wantOK:  true,
		},
		{
			name:    "block start missing content_block",
			payload: `{"type":"content_block_start","index":0}`,
			want:    unknownEvent{kind: "content_block_start"},
			wantOK:  true,
		},
		{
			name:    "text delta",
			payload: `{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hi"}}`,
			want:    textDelta{text: "Hi"},
			wantOK:  true,
		},
		{
			name:    "input json delta",
			payload: `{"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"ti"}}`,
			want:    jsonDelta{partial: `{"ti`},
			wantOK:  true,
		},
		{
			name:    "unrecognized delta kind",
			payload: `{"type":"content_block_delta","delta":{"type":"citations_delta"}}`,
			want:    unknownEvent{kind: "content_block_delta/citations_delta"},
			wantOK:  true,
		},
		{
			name:    "block stop",
			payload: `{"type":"content_block_stop","index":0}`,
			want:    blockStop{},
			wantOK:  true,
		},
		{
			name:    "message delta",
			payload: `{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			want:    messageDelta{},
			wantOK:  true,
		},
		{
			name:    "message stop with reason",
			payload: `{"type":"message_stop","message":{"stop_reason":"max_tokens"}}`,
			want:    messageStop{stopReason: "max_tokens"},
			wantOK:  true,
		},
		{
			name:    "message stop bare",
			payload: `{"type":"message_stop"}`,
			want:    messageStop{},
			wantOK:  true,
		},
		{
			name:    "error event",
			payload: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			want:    errorEvent{errType: "overloaded_error", message: "Overloaded"},
			wantOK:  true,
		},
		{
			name:    "unknown event kind",
			payload: `{"type":"message_start","message":{}}`,
			want:    unknownEvent{kind: "message_start"},
			wantOK:  true,
		},
		{
			name:    "invalid json dropped",
			payload: `{"type":"content_block_delta"`,
			want:    nil,
			wantOK:  false,
		},
		{
			name:    "empty payload dropped",
			payload: ``,
			want:    nil,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeEvent(tt.payload)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("event = %#v, want %#v", got, tt.want)
			}
		})
	}
}
