package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixkme/globaltick/mlog"
)

// Server 提供/metrics的app模块
type Server struct {
	name     string
	addr     string
	registry *prometheus.Registry
	ln       net.Listener
	srv      *http.Server
}

// NewServer 注册c以及进程和go运行时指标
func NewServer(name, addr string, c prometheus.Collector) (*Server, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &Server{
		name:     name,
		addr:     addr,
		registry: reg,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (s *Server) Name() string {
	return s.name
}

// Addr 实际监听地址，OnInit之后有效
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

func (s *Server) OnInit() (err error) {
	s.ln, err = net.Listen("tcp", s.addr)
	return
}

func (s *Server) Run() {
	mlog.Infof("metrics listening on %s", s.Addr())
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mlog.Errorf("metrics server error: %v", err)
	}
}

func (s *Server) Destroy() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		mlog.Warnf("metrics server shutdown: %v", err)
	}
}
