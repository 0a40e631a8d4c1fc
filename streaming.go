package writecraft

// StreamChunk is one incremental text notification.
// A final chunk with Done=true and empty Chunk marks end of text.
type StreamChunk struct {
	Chunk string `json:"chunk"`
	Done  bool   `json:"done"`
}

// ToolUseEvent is emitted when a streamed tool invocation completes.
type ToolUseEvent struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// MessageStopEvent is emitted when the stream reaches its terminal state.
type MessageStopEvent struct {
	StopReason string `json:"stopReason"`
}

// StreamError is emitted when the server reports an in-stream error.
// The call itself also fails with an *APIError.
type StreamError struct {
	Error string `json:"error"`
}

// Sink receives incremental notifications while a response streams.
// Delivery is fire-and-forget: implementations must not assume they can
// abort the stream, and a panicking or slow sink never propagates into
// the decode loop. Notifications already delivered before an abort are
// not retracted.
type Sink interface {
	// OnChunk is called for each text delta, and once more with Done=true
	// when the message stops.
	OnChunk(StreamChunk)

	// OnToolUse is called once per completed tool invocation, in order.
	OnToolUse(ToolUseEvent)

	// OnStop is called when the stream reaches a terminal state.
	OnStop(MessageStopEvent)

	// OnError is called when the server reports an in-stream error.
	OnError(StreamError)
}

// SinkFuncs adapts plain functions to the Sink interface.
// Nil fields are skipped.
type SinkFuncs struct {
	Chunk   func(StreamChunk)
	ToolUse func(ToolUseEvent)
	Stop    func(MessageStopEvent)
	Error   func(StreamError)
}

func (s SinkFuncs) OnChunk(c StreamChunk) {
	if s.Chunk != nil {
		s.Chunk(c)
	}
}

func (s SinkFuncs) OnToolUse(t ToolUseEvent) {
	if s.ToolUse != nil {
		s.ToolUse(t)
	}
}

func (s SinkFuncs) OnStop(m MessageStopEvent) {
	if s.Stop != nil {
		s.Stop(m)
	}
}

func (s SinkFuncs) OnError(e StreamError) {
	if s.Error != nil {
		s.Error(e)
	}
}

// StreamEvent is a single notification in channel form.
// Exactly one field is non-nil.
type StreamEvent struct {
	Chunk   *StreamChunk
	ToolUse *ToolUseEvent
	Stop    *MessageStopEvent
	Err     *StreamError
}

// EventSink forwards notifications to a bounded channel without ever
// blocking the decode loop: when the buffer is full, events are dropped.
// Suited for UI consumers that only need the latest state.
type EventSink struct {
	events chan StreamEvent
}

// NewEventSink creates an EventSink with the given buffer size.
// A buffer of at least a few dozen events is recommended for chatty streams.
func NewEventSink(buffer int) *EventSink {
	if buffer < 1 {
		buffer = 1
	}
	return &EventSink{events: make(chan StreamEvent, buffer)}
}

// Events returns the receive side of the notification channel.
// The channel is not closed by the sink; consumers should stop reading
// after a Stop or Err event.
func (s *EventSink) Events() <-chan StreamEvent {
	return s.events
}

func (s *EventSink) send(ev StreamEvent) {
	select {
	case s.events <- ev:
	default:
		// Full buffer: drop rather than stall the stream.
	}
}

func (s *EventSink) OnChunk(c StreamChunk) { s.send(StreamEvent{Chunk: &c}) }

func (s *EventSink) OnToolUse(t ToolUseEvent) { s.send(StreamEvent{ToolUse: &t}) }

func (s *EventSink) OnStop(m MessageStopEvent) { s.send(StreamEvent{Stop: &m}) }

func (s *EventSink) OnError(e StreamError) { s.send(StreamEvent{Err: &e}) }
