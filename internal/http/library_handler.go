package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storyroom/internal/entity"
	"storyroom/internal/library"
	"storyroom/internal/usecase"
)

// Upserter is the reconciler surface this handler needs.
type Upserter interface {
	UpsertEntry(ctx context.Context, userID string, req library.UpsertRequest) (entity.LibraryEntry, error)
}

type LibraryHandler struct {
	service Upserter
	repo    usecase.LibraryRepository
}

func NewLibraryHandler(service Upserter, repo usecase.LibraryRepository) *LibraryHandler {
	return &LibraryHandler{service: service, repo: repo}
}

// @Summary Add or update a library entry
// @Description Reconcile the submitted book against the catalog and upsert the caller's entry for it
// @Tags library
// @Accept json
// @Produce json
// @Security Bearer
// @Param entry body library.UpsertRequest true "Entry payload"
// @Success 200 {object} entity.LibraryEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/library/entry [post]
func (h *LibraryHandler) AddOrUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r)

	var req library.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	entry, err := h.service.UpsertEntry(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrValidation):
			writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		case errors.Is(err, usecase.ErrNotFound):
			writeError(w, http.StatusNotFound, "Book not found", nil)
		default:
			log.Printf("library: upsert failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// @Summary List library entries
// @Description Get the caller's library entries with book data, newest first
// @Tags library
// @Produce json
// @Security Bearer
// @Param status query int false "Filter by status (0, 1 or 2)"
// @Success 200 {array} entity.LibraryItem
// @Failure 400 {object} ErrorResponse
// @Router /api/library [get]
func (h *LibraryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r)

	var status *int
	if raw := r.URL.Query().Get("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !entity.ValidStatus(n) {
			writeError(w, http.StatusBadRequest, "status must be 0, 1 or 2", nil)
			return
		}
		status = &n
	}

	items, err := h.repo.ListItems(r.Context(), userID, status)
	if err != nil {
		log.Printf("library: list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	if items == nil {
		items = []entity.LibraryItem{}
	}

	writeJSON(w, http.StatusOK, items)
}

// @Summary Delete a library entry
// @Description Remove one of the caller's library entries
// @Tags library
// @Security Bearer
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/library/entry/{id} [delete]
func (h *LibraryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r)

	// /api/library/entry/{id}
	const prefix = "/api/library/entry/"
	entryID := strings.TrimPrefix(r.URL.Path, prefix)
	if entryID == "" || strings.Contains(entryID, "/") {
		http.NotFound(w, r)
		return
	}
	if _, err := uuid.Parse(entryID); err != nil {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}

	if err := h.repo.DeleteEntry(r.Context(), userID, entryID); err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Entry not found", nil)
			return
		}
		log.Printf("library: delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
