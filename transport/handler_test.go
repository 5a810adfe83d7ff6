package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/driver"
	"github.com/hupe1980/agentwire/wire"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRunner records the request it was handed and replays a fixed event
// sequence.
type fakeRunner struct {
	lastReq core.Request
	runID   string
	events  []wire.Event
	err     error
}

func (f *fakeRunner) Run(_ context.Context, req core.Request) (string, <-chan wire.Event, error) {
	f.lastReq = req

	if f.err != nil {
		return "", nil, f.err
	}

	ch := make(chan wire.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)

	return f.runID, ch, nil
}

func newTestRouter(runner Runner) *gin.Engine {
	return NewRouter(NewHandler(runner))
}

func TestHandleRun_StreamsSSE(t *testing.T) {
	runner := &fakeRunner{
		runID: "r-1",
		events: []wire.Event{
			wire.NewRunStarted("t-1", "r-1"),
			wire.NewTextMessageChunk("hi"),
			wire.NewRunFinished("t-1", "r-1"),
		},
	}

	r := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{"threadId":"t-1"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "r-1", rec.Header().Get("X-Run-ID"))

	assert.Equal(t, "t-1", runner.lastReq.ThreadID)

	body := rec.Body.String()
	assert.Contains(t, body, `"type":"RUN_STARTED"`)
	assert.Contains(t, body, `"type":"RUN_FINISHED"`)
	assert.True(t, strings.HasPrefix(body, "data: "))
}

func TestHandleRun_NDJSONNegotiation(t *testing.T) {
	runner := &fakeRunner{
		runID:  "r-1",
		events: []wire.Event{wire.NewRunFinished("t-1", "r-1")},
	}

	r := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "{"))
}

func TestHandleRun_HeaderIdentifiers(t *testing.T) {
	runner := &fakeRunner{
		runID:  "r-7",
		events: []wire.Event{wire.NewRunFinished("t-7", "r-7")},
	}

	r := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Thread-ID", "t-7")
	req.Header.Set("X-Run-ID", "r-7")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "t-7", runner.lastReq.ThreadID)
	assert.Equal(t, "r-7", runner.lastReq.RunID)
}

func TestHandleRun_BodyIdentifiersWinOverHeaders(t *testing.T) {
	runner := &fakeRunner{
		runID:  "r-body",
		events: []wire.Event{wire.NewRunFinished("t-body", "r-body")},
	}

	r := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{"threadId":"t-body","runId":"r-body"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Thread-ID", "t-header")
	req.Header.Set("X-Run-ID", "r-header")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "t-body", runner.lastReq.ThreadID)
	assert.Equal(t, "r-body", runner.lastReq.RunID)
}

func TestHandleRun_InvalidBody(t *testing.T) {
	r := newTestRouter(&fakeRunner{})

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid run request")
}

func TestHandleRun_UnusableEngine(t *testing.T) {
	r := newTestRouter(&fakeRunner{err: driver.ErrUnusableEngine})

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleRun_StartupFailure(t *testing.T) {
	r := newTestRouter(&fakeRunner{err: errors.New("all invocation conventions rejected")})

	req := httptest.NewRequest(http.MethodPost, "/awp/run", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected")
}

func TestRouter_DriverSatisfiesRunner(t *testing.T) {
	var _ Runner = (*driver.Driver)(nil)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(&fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/awp/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
