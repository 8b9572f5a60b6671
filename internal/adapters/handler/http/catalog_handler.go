package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type createPositionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createCandidateRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Manifesto string `json:"manifesto" validate:"max=5000"`
	ImageURL  string `json:"image_url" validate:"omitempty,url,max=500"`
}

func (h *CatalogHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.ListPositions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (h *CatalogHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req createPositionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	position, err := h.service.CreatePosition(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, position)
}

func (h *CatalogHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	positionID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createCandidateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	candidate, err := h.service.CreateCandidate(r.Context(), ports.CreateCandidateInput{
		PositionID: positionID,
		Name:       req.Name,
		Manifesto:  req.Manifesto,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, candidate)
}
