package http

import (
	"log/slog"
	"net/http"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
)

// DirectoryHandler serves the public coach and athlete listings.
type DirectoryHandler struct {
	directory *service.DirectoryService
	logger    *slog.Logger
}

// NewDirectoryHandler creates a directory HTTP handler.
func NewDirectoryHandler(directory *service.DirectoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, logger: logger}
}

// Coaches handles GET /api/coaches
func (h *DirectoryHandler) Coaches(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.RoleCoach)
}

// Athletes handles GET /api/athletes
func (h *DirectoryHandler) Athletes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.RoleAthlete)
}

// serve answers ?name=<slug> with the single best match and everything else
// with a page of the listing.
func (h *DirectoryHandler) serve(w http.ResponseWriter, r *http.Request, role domain.Role) {
	if name := r.URL.Query().Get("name"); name != "" {
		entry, err := h.directory.FindBySlug(r.Context(), role, name)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, entry)
		return
	}

	res, err := h.directory.List(r.Context(), role, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}
