// Package handlers implements the management API's endpoint handlers.
//
// @title cachewarden Management API
// @version 1.0
// @description Read-only inspection surface for the DNS cache refresh daemon: the current answer index and host health.
//
// @license.name MIT
//
// @host localhost:3030
// @BasePath /
package handlers

import (
	"log/slog"
	"time"

	"github.com/cachewarden/cachewarden/internal/index"
	"github.com/cachewarden/cachewarden/internal/persistence"
)

// Handler holds the dependencies every route needs to read daemon state.
// It never mutates the index or the scheduler — the management API is
// read-only by design (spec §1's non-goal on a control-plane surface).
type Handler struct {
	idx       *index.Index
	store     *persistence.Store
	logger    *slog.Logger
	startTime time.Time
}

// New returns a Handler backed by idx. store may be nil when persistence
// is disabled.
func New(idx *index.Index, store *persistence.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{idx: idx, store: store, logger: logger, startTime: time.Now()}
}
