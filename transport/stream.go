package transport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/wire"
)

// Format selects the content framing for a streamed response.
type Format string

const (
	// FormatSSE frames events as Server-Sent Events (data: <json>\n\n).
	FormatSSE Format = "sse"
	// FormatNDJSON frames events as one JSON object per line.
	FormatNDJSON Format = "ndjson"
)

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	if f == FormatNDJSON {
		return "application/x-ndjson"
	}

	return "text/event-stream"
}

// NegotiateFormat picks the stream format from an Accept header. SSE is the
// default; clients opt into the simpler line-delimited form explicitly.
func NegotiateFormat(accept string) Format {
	if strings.Contains(accept, "application/x-ndjson") {
		return FormatNDJSON
	}

	return FormatSSE
}

// StreamerOptions holds configuration overrides passed to NewStreamer().
type StreamerOptions struct {
	// HeartbeatInterval is the idle period after which a no-op frame is
	// written to keep intermediary proxies from closing the connection.
	HeartbeatInterval time.Duration
	// Logger receives delivery diagnostics.
	Logger logging.Logger
}

// Streamer writes wire event sequences as framed, heartbeat-supporting HTTP
// response streams. Stateless between calls and safe for concurrent use.
type Streamer struct {
	heartbeatInterval time.Duration
	logger            logging.Logger
}

// NewStreamer constructs a Streamer with optional overrides.
func NewStreamer(optFns ...func(o *StreamerOptions)) *Streamer {
	opts := StreamerOptions{
		HeartbeatInterval: 15 * time.Second,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Streamer{heartbeatInterval: opts.HeartbeatInterval, logger: opts.Logger}
}

// Stream delivers the event sequence over w until a terminal event is written
// or the sequence ends. Events are written in arrival order without
// buffering; every frame is flushed immediately. After a terminal event the
// stream closes at once and no further frames are sent.
func (s *Streamer) Stream(w http.ResponseWriter, format Format, events <-chan wire.Event) error {
	start := time.Now()

	frames, err := s.stream(w, format, events)
	s.logDelivery(format, frames, time.Since(start), err)

	return err
}

func (s *Streamer) stream(w http.ResponseWriter, format Format, events <-chan wire.Event) (int, error) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		return 0, fmt.Errorf("streaming unsupported by response writer")
	}

	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	frames := 0

	for {
		select {
		case ev, open := <-events:
			if !open {
				return frames, nil
			}

			data, err := wire.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to serialize wire event type=%s err=%v", ev.EventType(), err)
				continue
			}

			if err := writeFrame(w, format, data); err != nil {
				return frames, fmt.Errorf("write frame: %w", err)
			}

			flusher.Flush()
			frames++

			if ev.EventType().IsTerminal() {
				s.logger.Debug("stream closed after terminal event format=%s frames=%d", format, frames)
				return frames, nil
			}

		case <-ticker.C:
			if err := writeHeartbeat(w, format); err != nil {
				return frames, fmt.Errorf("write heartbeat: %w", err)
			}

			flusher.Flush()
		}
	}
}

// logDelivery feeds the delivery record to loggers that keep one.
func (s *Streamer) logDelivery(format Format, frames int, dur time.Duration, err error) {
	if dl, ok := s.logger.(interface {
		LogStreamDelivery(string, int, time.Duration, error)
	}); ok {
		dl.LogStreamDelivery(string(format), frames, dur, err)
	}
}

func writeFrame(w http.ResponseWriter, format Format, data []byte) error {
	var err error

	if format == FormatNDJSON {
		_, err = fmt.Fprintf(w, "%s\n", data)
	} else {
		_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	}

	return err
}

// writeHeartbeat emits a no-op frame: an SSE comment or a bare newline.
// Heartbeats are not wire events and carry no type discriminator.
func writeHeartbeat(w http.ResponseWriter, format Format) error {
	var err error

	if format == FormatNDJSON {
		_, err = fmt.Fprint(w, "\n")
	} else {
		_, err = fmt.Fprint(w, ": heartbeat\n\n")
	}

	return err
}
