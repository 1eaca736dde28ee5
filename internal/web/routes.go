package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kozaktomas/photo-memories/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	statsHandler := handlers.NewStatsHandler(s.deps.Store, s.deps.Engine, s.log)
	scanHandler := handlers.NewScanHandler(s.deps.Engine, s.jobManager, s.log)
	draftsHandler := handlers.NewDraftsHandler(s.deps.Review, statsHandler, s.log)
	photosHandler := handlers.NewPhotosHandler(s.deps.Thumbnails, s.log)
	configHandler := handlers.NewConfigHandler(s.config)

	if s.deps.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Scans (long-running operations)
		r.Get("/scan", scanHandler.Status)
		r.Post("/scan", scanHandler.Start)
		r.Delete("/scan/progress", scanHandler.ResetProgress)
		r.Get("/scan/jobs/{jobId}", scanHandler.Job)
		r.Get("/scan/jobs/{jobId}/events", scanHandler.Events)
		r.Delete("/scan/jobs/{jobId}", scanHandler.Cancel)
		r.Delete("/history", scanHandler.ResetHistory)

		// Draft review
		r.Get("/drafts", draftsHandler.List)
		r.Get("/drafts/{id}", draftsHandler.Get)
		r.Post("/drafts/{id}/accept", draftsHandler.Accept)
		r.Post("/drafts/{id}/reject", draftsHandler.Reject)
		r.Get("/events", draftsHandler.Events)

		// Photos
		r.Get("/photos/{uid}/thumb/{size}", photosHandler.Thumbnail)

		r.Get("/config", configHandler.Get)
		r.Get("/stats", statsHandler.Get)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})
}
