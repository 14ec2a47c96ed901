package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hobbytracker/internal/logging"
	"github.com/dmitrijs2005/hobbytracker/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// RouterConfig carries what NewRouter needs besides the handler.
type RouterConfig struct {
	Logger        logging.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	RegisterLimit rate.Limit
	RegisterBurst int
}

// NewRouter wires routes and middleware.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// ClientIP comes from the socket, not from forwarding headers
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery(), requestID(), accessLog(cfg.Logger, cfg.Metrics))

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, DetailNotFound)
	})

	limiter := newIPRateLimiter(cfg.RegisterLimit, cfg.RegisterBurst)
	r.POST("/register/", rateLimit(limiter, cfg.Metrics), h.RegisterUser)
	r.GET("/users/:id", h.GetUser)
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	return r
}

type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(a string, h http.Handler, l logging.Logger) *HTTPServer {
	return &HTTPServer{
		address: a,
		handler: h,
		logger:  l.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
