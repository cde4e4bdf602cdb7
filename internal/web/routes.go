package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/photo-faces/internal/web/handlers"
	"github.com/kozaktomas/photo-faces/internal/web/static"
)

// requestTimeout bounds non-streaming API requests.
const requestTimeout = 2 * time.Minute

func (s *Server) setupRoutes() {
	imagesHandler := handlers.NewImagesHandler(s.repo, s.listing, s.log)
	scanHandler := handlers.NewScanHandler(s.repo, s.jobManager, s.log)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Streams are exempt from the request timeout
		r.Get("/images/events", imagesHandler.Events)
		r.Get("/scan/{jobId}/events", scanHandler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(requestTimeout))

			// Grid
			r.Get("/images", imagesHandler.List)

			// Detail
			r.Get("/image", imagesHandler.Get)
			r.Get("/image/render", imagesHandler.Render)
			r.Put("/image/faces", imagesHandler.UpdateFace)
			r.Get("/image/suggestions", imagesHandler.Suggestions)

			// Scan (long-running)
			r.Post("/scan", scanHandler.Start)
			r.Get("/scan/{jobId}", scanHandler.Status)
			r.Delete("/scan/{jobId}", scanHandler.Cancel)

			// Maintenance
			r.Post("/cleanup", imagesHandler.Cleanup)
		})
	})

	// Frontend
	s.router.Get("/*", s.serveUI)
}

// serveUI serves the embedded single-page UI.
func (s *Server) serveUI(w http.ResponseWriter, r *http.Request) {
	http.FileServer(static.GetFileSystem()).ServeHTTP(w, r)
}
