package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/driver"
	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/wire"
)

// Runner abstracts the run driver so the HTTP surface can be exercised with
// fakes. *driver.Driver satisfies it.
type Runner interface {
	Run(ctx context.Context, req core.Request) (string, <-chan wire.Event, error)
}

// HandlerOptions holds dependency overrides passed to NewHandler().
type HandlerOptions struct {
	// Streamer frames the event sequence over HTTP responses.
	Streamer *Streamer
	// Logger receives request and delivery records.
	Logger logging.Logger
}

// Handler exposes the run driver over HTTP: clients POST a run request and
// receive the wire event stream on the same response, framed per their Accept
// header. Client disconnects cancel the run through context propagation.
type Handler struct {
	runner   Runner
	streamer *Streamer
	logger   logging.Logger
	ws       *WebSocket
}

// NewHandler constructs a Handler with optional overrides.
func NewHandler(runner Runner, optFns ...func(o *HandlerOptions)) *Handler {
	opts := HandlerOptions{
		Streamer: NewStreamer(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Handler{
		runner:   runner,
		streamer: opts.Streamer,
		logger:   opts.Logger,
		ws:       NewWebSocket(runner, func(o *WebSocketOptions) { o.Logger = opts.Logger }),
	}
}

// Register mounts the run endpoints on a gin router.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/awp/run", h.HandleRun)
	r.GET("/awp/ws", h.ws.Handle)
}

// HandleRun accepts a run request and streams its wire events back on the
// response. The thread and run identifiers may arrive in the body or the
// X-Thread-ID / X-Run-ID headers; missing identifiers are generated and the
// effective run id is echoed in the X-Run-ID response header.
func (h *Handler) HandleRun(c *gin.Context) {
	var req core.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run request: " + err.Error()})
		return
	}

	if req.ThreadID == "" {
		req.ThreadID = c.GetHeader("X-Thread-ID")
	}

	if req.RunID == "" {
		req.RunID = c.GetHeader("X-Run-ID")
	}

	format := NegotiateFormat(c.GetHeader("Accept"))

	runID, eventsCh, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, driver.ErrUnusableEngine) {
			status = http.StatusNotImplemented
		}

		c.JSON(status, gin.H{"error": err.Error()})

		return
	}

	c.Header("X-Run-ID", runID)

	h.logger.Info("run stream opened run_id=%s format=%s", runID, format)

	if err := h.streamer.Stream(c.Writer, format, eventsCh); err != nil {
		// Write failures mean the client went away; cancellation has already
		// propagated through the request context.
		h.logger.Warn("run stream aborted run_id=%s err=%v", runID, err)
	}
}

// NewRouter builds a gin engine with recovery and permissive CORS wired in
// front of the handler's routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	h.Register(r)

	return r
}
