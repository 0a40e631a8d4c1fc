package claude

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// doneSentinel is the literal payload some SSE proxies append to mark
// stream completion. It is discarded without producing a frame.
const doneSentinel = "[DONE]"

// frameSplitter turns arriving byte chunks into SSE data payloads.
// Chunks may split frames, lines, and even UTF-8 code points at any
// byte boundary; the splitter buffers a trailing partial line so the
// extracted payload sequence is invariant to how the transport chunked
// the stream.
type frameSplitter struct {
	buf []byte
}

// push appends one chunk and returns the payloads of every complete
// data line now available. Blank lines, comments, event-name lines,
// and the [DONE] sentinel are discarded.
func (s *frameSplitter) push(chunk []byte) []string {
	s.buf = append(s.buf, chunk...)

	var frames []string
	for {
		nl := bytes.IndexByte(s.buf, '\n')
		if nl < 0 {
			return frames
		}
		line := strings.TrimSpace(lossyString(s.buf[:nl]))
		s.buf = s.buf[nl+1:]

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == doneSentinel {
			continue
		}
		frames = append(frames, payload)
	}
}

// lossyString decodes a raw line, substituting U+FFFD for invalid byte
// sequences instead of failing. The newline byte never occurs inside a
// multi-byte rune, so splitting on newlines before decoding keeps the
// substitution independent of chunk boundaries.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
