package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-tower/internal/logging"
	"parking-tower/internal/parking"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(port string, engine *parking.Engine, events *parking.MemoryRecorder, serviceName string) *Server {
	handler := NewHandler(engine, events, serviceName)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      newRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func newRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/garage", func(r chi.Router) {
		r.Get("/status", handler.GetStatus)
		r.Get("/grid", handler.GetGrid)
		r.Get("/events", handler.GetEvents)
		r.Get("/vehicles/{plate}", handler.FindVehicle)
		r.Post("/vehicles", handler.InjectVehicle)
		r.Post("/start", handler.StartEngine)
		r.Post("/stop", handler.StopEngine)
		r.Post("/spaces/{spaceID}/release", handler.ReleaseSpace)
		r.Put("/spaces/{spaceID}/maintenance", handler.SetMaintenance)
	})

	return r
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
