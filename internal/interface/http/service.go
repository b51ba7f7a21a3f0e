package httpservice

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/beastmint/mintd/internal/config"
	"github.com/beastmint/mintd/internal/core/application"
	interfaces "github.com/beastmint/mintd/internal/interface"
	"github.com/beastmint/mintd/internal/interface/http/handlers"
	"github.com/beastmint/mintd/internal/interface/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
)

// mint requests wait for image generation, keep the write deadline generous.
const writeTimeout = 5 * time.Minute

type service struct {
	version       string
	config        Config
	appConfig     *config.Config
	server        *http.Server
	mintSvc       application.MintService
	transferSvc   application.TransferService
	appSvcStarted atomic.Bool
	otelShutdown  func(context.Context) error
}

func NewService(
	version string, svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	mintSvc, err := appConfig.MintService()
	if err != nil {
		return nil, err
	}
	transferSvc, err := appConfig.TransferService()
	if err != nil {
		return nil, err
	}

	return &service{
		version:     version,
		config:      svcConfig,
		appConfig:   appConfig,
		mintSvc:     mintSvc,
		transferSvc: transferSvc,
	}, nil
}

func (s *service) Start() error {
	otelShutdown, err := s.appConfig.InitTelemetry(context.Background())
	if err != nil {
		return fmt.Errorf("failed to init otel sdk: %s", err)
	}
	s.otelShutdown = otelShutdown
	if otelShutdown != nil {
		log.Infof("pushing metrics to %s", s.appConfig.OtelCollectorEndpoint)
	}

	if err := s.mintSvc.Start(); err != nil {
		return err
	}
	s.appSvcStarted.Store(true)
	log.Info("started app service")

	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           s.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}
	// nolint:all
	go s.server.ListenAndServe()

	log.Infof("started listening at %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	if s.appSvcStarted.CompareAndSwap(true, false) {
		s.mintSvc.Stop()
		s.transferSvc.Close()
		log.Info("stopped app service")
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to gracefully shutdown http server")
			// nolint:all
			s.server.Close()
		}
	}

	if s.otelShutdown != nil {
		if err := s.otelShutdown(context.Background()); err != nil {
			log.Errorf("failed to shutdown otel: %s", err)
		}
	}
	log.Info("shutdown service")
}

func (s *service) newRouter() http.Handler {
	return NewRouter(s.version, s.config.allowedOrigins(), s.mintSvc, s.transferSvc)
}

// NewRouter mounts the api routes on a chi router.
func NewRouter(
	version string, allowedOrigins []string,
	mintSvc application.MintService, transferSvc application.TransferService,
) http.Handler {
	mintHandler := handlers.NewMintHandler(mintSvc)
	transferHandler := handlers.NewTransferHandler(transferSvc)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.PanicRecovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handlers.Health(version))

	r.Route("/api", func(r chi.Router) {
		r.Route("/mint", func(r chi.Router) {
			r.Post("/", mintHandler.Mint)
			r.Get("/status/{requestId}", mintHandler.GetStatus)
			r.Post("/status/{requestId}/refresh", mintHandler.Refresh)
			r.Get("/records/{requestId}", mintHandler.GetRecord)
		})
		r.Post("/send", transferHandler.SendNft)
		r.Post("/send/rise", transferHandler.SendJetton)
		r.Get("/wallet", transferHandler.GetWallet)
	})

	return r
}
