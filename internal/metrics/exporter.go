package metrics

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"honeypot-bot/internal/logging"
)

// Exporter serves /metrics and /healthz.
type Exporter struct {
	addr    string
	server  *fasthttp.Server
	ln      net.Listener
	metrics fasthttp.RequestHandler
	ready   atomic.Bool
}

func NewExporter(addr string) *Exporter {
	e := &Exporter{
		addr:    addr,
		metrics: fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()),
	}
	e.server = &fasthttp.Server{
		Handler:      e.handle,
		Name:         "honeypot-bot",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return e
}

// SetReady flips the health endpoint between 200 and 503.
func (e *Exporter) SetReady(ready bool) {
	e.ready.Store(ready)
}

func (e *Exporter) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/metrics":
		e.metrics(ctx)
	case "/healthz":
		if !e.ready.Load() {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			ctx.SetBodyString("starting\n")
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok\n")
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

// Start binds the listener and serves in the background.
func (e *Exporter) Start() error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", e.addr, err)
	}
	e.ln = ln

	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Error("Metrics server stopped: %v", err)
		}
	}()

	logging.Info("Metrics exporter listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound address once started.
func (e *Exporter) Addr() string {
	if e.ln == nil {
		return e.addr
	}
	return e.ln.Addr().String()
}

func (e *Exporter) Stop() error {
	if e.ln == nil {
		return nil
	}
	return e.server.Shutdown()
}
