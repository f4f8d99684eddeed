package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/catalog"
)

// AcquireRequest is the body of POST /api/v1/assets.
type AcquireRequest struct {
	Category       string `json:"category"`
	Name           string `json:"name"`
	SourceURL      string `json:"source_url"`
	SkipExtraction bool   `json:"skip_extraction"`
	Version        string `json:"version,omitempty"`
}

// AcquireResponse is returned when an acquisition was accepted.
type AcquireResponse struct {
	TaskID string `json:"task_id"`
	Asset  string `json:"asset"`
	Shared bool   `json:"shared"`
}

// StatusResponse describes one storage location.
type StatusResponse struct {
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Ready    bool            `json:"ready"`
	State    asset.State     `json:"state"`
	Manifest *asset.Manifest `json:"manifest,omitempty"`
}

// CatalogItem is a catalog entry with its verdict for this machine.
type CatalogItem struct {
	catalog.Entry
	Compatibility catalog.Compatibility `json:"compatibility"`
	Installed     bool                  `json:"installed"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// acquire starts an acquisition.
// POST /api/v1/assets
func (s *Server) acquire(c echo.Context) error {
	var body AcquireRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := asset.Request{
		Category:       body.Category,
		Name:           body.Name,
		SourceURL:      body.SourceURL,
		SkipExtraction: body.SkipExtraction,
		Version:        body.Version,
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, shared := s.acquirer.Acquire(c.Request().Context(), req)
	logger.Info("Acquisition accepted", logger.Fields{
		"asset":  req.Key(),
		"task":   task.ID,
		"shared": shared,
	})

	return c.JSON(http.StatusAccepted, AcquireResponse{TaskID: task.ID, Asset: req.Name, Shared: shared})
}

// ready reports whether a storage location exists.
// GET /api/v1/assets/:category/:name/ready
func (s *Server) ready(c echo.Context) error {
	ready := asset.IsReady(s.acquirer.Root(), c.Param("category"), c.Param("name"))
	return c.JSON(http.StatusOK, map[string]bool{"ready": ready})
}

// status reports a storage location together with its manifest.
// GET /api/v1/assets/:category/:name
func (s *Server) status(c echo.Context) error {
	category, name := c.Param("category"), c.Param("name")
	root := s.acquirer.Root()

	state, manifest := asset.Inspect(root, category, name)
	return c.JSON(http.StatusOK, StatusResponse{
		Category: category,
		Name:     name,
		Location: asset.Resolve(root, category, name),
		Ready:    state != asset.StateMissing,
		State:    state,
		Manifest: manifest,
	})
}

// listCatalog returns catalog entries, optionally filtered by ?category=.
// GET /api/v1/catalog
func (s *Server) listCatalog(c echo.Context) error {
	category := c.QueryParam("category")
	root := s.acquirer.Root()

	evals := s.catalog.Load().Evaluate(s.system)
	items := make([]CatalogItem, 0, len(evals))
	for _, ev := range evals {
		if category != "" && ev.Entry.Category != category {
			continue
		}
		items = append(items, CatalogItem{
			Entry:         ev.Entry,
			Compatibility: ev.Status,
			Installed:     asset.IsReady(root, ev.Entry.Category, ev.Entry.Name),
		})
	}
	return c.JSON(http.StatusOK, items)
}
