package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/logging"
)

// WebSocketOptions holds configuration overrides passed to NewWebSocket().
type WebSocketOptions struct {
	// PingInterval is the keepalive period for websocket ping control
	// frames. Pings are a transport concern, invisible to translation.
	PingInterval time.Duration
	// Logger receives connection records.
	Logger logging.Logger
}

// WebSocket delivers wire event sequences over a websocket connection. The
// client sends one run request as the first text message and receives each
// wire event as a JSON text message; after the terminal event the connection
// closes with a normal closure frame.
type WebSocket struct {
	runner       Runner
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	logger       logging.Logger
}

// NewWebSocket constructs a WebSocket binding with optional overrides.
func NewWebSocket(runner Runner, optFns ...func(o *WebSocketOptions)) *WebSocket {
	opts := WebSocketOptions{
		PingInterval: 15 * time.Second,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &WebSocket{
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: opts.PingInterval,
		logger:       opts.Logger,
	}
}

// Handle upgrades the request and streams one run over the connection.
func (ws *WebSocket) Handle(c *gin.Context) {
	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade failures already wrote the HTTP error response.
		ws.logger.Warn("websocket upgrade failed err=%v", err)
		return
	}
	defer conn.Close()

	var req core.Request
	if err := conn.ReadJSON(&req); err != nil {
		ws.writeClose(conn, websocket.ClosePolicyViolation, "invalid run request")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	runID, eventsCh, err := ws.runner.Run(ctx, req)
	if err != nil {
		ws.writeClose(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}

	ws.logger.Info("websocket run stream opened run_id=%s", runID)

	// The client sends nothing further; the read pump exists to detect
	// disconnects and close frames, cancelling the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(ws.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, open := <-eventsCh:
			if !open {
				ws.writeClose(conn, websocket.CloseNormalClosure, "")
				return
			}

			if err := conn.WriteJSON(ev); err != nil {
				ws.logger.Warn("websocket write failed run_id=%s err=%v", runID, err)
				cancel()

				return
			}

			if ev.EventType().IsTerminal() {
				ws.writeClose(conn, websocket.CloseNormalClosure, "")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				cancel()
				return
			}
		}
	}
}

func (ws *WebSocket) writeClose(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
