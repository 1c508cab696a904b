package service

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// MetricsServer exposes the default Prometheus registry on /metrics.
type MetricsServer struct {
	ctx    context.Context
	log    log.Logger
	server *http.Server
}

func NewMetricsServer(logger log.Logger) *MetricsServer {
	return &MetricsServer{log: logger}
}

func (m *MetricsServer) Start(ctx context.Context, addr string) error {
	hdlr := http.NewServeMux()
	hdlr.Handle("/metrics", promhttp.Handler())
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	server := &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	m.server = server
	m.ctx = ctx
	m.log.Info("Starting metrics server", "addr", addr)
	return m.server.ListenAndServe()
}

func (m *MetricsServer) Shutdown() error {
	return m.server.Shutdown(m.ctx)
}
