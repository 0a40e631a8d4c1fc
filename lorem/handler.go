package lorem

import (
	"net/http"
	"time"
)

// Handler serves a fresh generated stream for every request, pacing
// events by delay to exercise incremental consumers. A zero delay
// writes the whole stream at once.
func Handler(opts Options, delay time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")

		flusher, _ := w.(http.Flusher)
		payloads, _ := New(opts).Events()
		for _, payload := range payloads {
			if _, err := w.Write([]byte("data: " + payload + "\n\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			if delay > 0 {
				select {
				case <-r.Context().Done():
					return
				case <-time.After(delay):
				}
			}
		}
	})
}
