// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/activity"
	"github.com/assetdesk/assetdesk/internal/handler"
	"github.com/assetdesk/assetdesk/internal/persist"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/store"
)

// Config holds everything the server wires together.
type Config struct {
	Addr      string
	Store     *store.Store
	Registry  *registry.Registry
	Activity  activity.Store
	Persist   *persist.Store // nil disables persistence
	Events    *handler.EventStream
	ExportDir string
}

// Router builds the full route table.
func Router(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	fh := handler.NewFamilyHandler(cfg.Store)
	ah := handler.NewAssetHandler(cfg.Store)
	uh := handler.NewUserHandler(cfg.Store)
	rh := handler.NewRequestHandler(cfg.Store)
	th := handler.NewTaskHandler(cfg.Store)
	vh := handler.NewVendorHandler(cfg.Store)
	lh := handler.NewLayoutHandler(cfg.Store, cfg.Registry, cfg.Persist)
	foh := handler.NewFormHandler(cfg.Store, cfg.Registry)
	vwh := handler.NewViewHandler(cfg.Store)
	acth := handler.NewActivityHandler(cfg.Activity)
	exh := handler.NewExportHandler(cfg.Store, cfg.Persist, cfg.ExportDir)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/families", fh.List)
		r.Post("/families", fh.Save)
		r.Get("/families/{id}", fh.Get)
		r.Get("/families/{id}/assets", fh.Assets)
		r.Post("/families/{id}/assets/bulk", ah.Bulk)

		r.Get("/assets", ah.List)
		r.Post("/assets", ah.Save)
		r.Get("/assets/{id}", ah.Get)
		r.Post("/assets/import/preview", ah.ImportPreview)
		r.Post("/assets/import", ah.Import)

		r.Get("/users", uh.List)
		r.Post("/users", uh.Save)
		r.Get("/users/{id}", uh.Get)
		r.Get("/users/{id}/assets", uh.Assets)

		r.Get("/requests", rh.List)
		r.Post("/requests", rh.Submit)
		r.Get("/requests/{id}/task-form", rh.TaskForm)
		r.Post("/requests/{id}/approve", rh.Approve)
		r.Post("/requests/{id}/reject", rh.Reject)
		r.Post("/requests/{id}/fulfill", rh.Fulfill)

		r.Get("/tasks", th.List)
		r.Get("/tasks/{id}", th.Get)
		r.Get("/vendors", vh.List)

		r.Get("/layouts", lh.Config)
		r.Post("/layouts/validate", lh.Validate)
		r.Get("/layouts/{context}", lh.Get)
		r.Get("/layouts/{context}/fields", lh.Fields)
		r.Post("/layouts/{context}/session", lh.OpenSession)
		r.Post("/layout-sessions/{session}/ops", lh.Op)
		r.Post("/layout-sessions/{session}/commit", lh.Commit)
		r.Delete("/layout-sessions/{session}", lh.Discard)

		r.Post("/forms/{context}/render", foh.Render)
		r.Post("/forms/{context}/submit", foh.Submit)

		r.Get("/views/{view}", vwh.Render)
		r.Post("/views/{view}/sort", vwh.Sort)
		r.Post("/views/{view}/filter", vwh.Filter)
		r.Post("/views/{view}/columns", vwh.Columns)
		r.Get("/dashboard", vwh.Dashboard)

		r.Get("/activity/entity/{entity_type}/{entity_id}", acth.Entity)
		r.Post("/activity/search", acth.Search)

		r.Get("/export", exh.Download)
		r.Post("/export", exh.Save)

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return handler.Recovery(handler.Logging(r))
}

// Run starts the HTTP server and shuts it down when the context ends.
func Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: Router(cfg),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("starting server on %s", cfg.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
