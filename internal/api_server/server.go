package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/thomhuang/shipzone/internal/config"
	handlers "github.com/thomhuang/shipzone/internal/handlers/v1"
	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/pkg/metrics"
	"github.com/thomhuang/shipzone/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg       *config.Config
	store     store.Store
	estimator *shipping.Estimator
	listener  net.Listener
}

// New returns a new instance of the shipping API server.
func New(
	cfg *config.Config,
	store store.Store,
	estimator *shipping.Estimator,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		estimator: estimator,
		listener:  listener,
	}
}

// Router builds the HTTP handler with every middleware and route.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
		chiMiddleware.RequestID,
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	cache := s.estimator.Cache()
	h := handlers.NewServiceHandler(
		service.NewCheckoutService(s.store, s.estimator),
		service.NewPostalCodeService(cache),
		s.estimator,
	)
	h.Routes(router)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	if s.cfg.Dataset.Preload {
		if err := s.preload(ctx); err != nil {
			return err
		}
	}

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// preload loads the postal table before the first request. A failure is
// logged and left for the first quote to retry.
func (s *Server) preload(ctx context.Context) error {
	idx, err := s.estimator.Cache().Index(ctx)
	if err != nil {
		if errors.Is(err, postal.ErrDatasetUnavailable) {
			zap.S().Named("api_server").Warnw("postal dataset preload failed, quotes will retry", "error", err)
			return nil
		}
		return err
	}

	origin, err := s.estimator.OriginRecord(ctx)
	if err == nil {
		zap.S().Named("api_server").Infow("postal dataset ready", "records", idx.Len(), "origin_postal_code", origin.Code, "origin_city", origin.City)
	}
	return nil
}
