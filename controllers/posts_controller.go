package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"blog-api/middlewares"
	"blog-api/models"
	"blog-api/services"
	"blog-api/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// PostService is the subset of services.PostService the handlers call.
type PostService interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Post, error)
	Create(ctx context.Context, in models.CreatePostInput) (models.Post, error)
	Update(ctx context.Context, id uuid.UUID, in models.UpdatePostInput) (models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostHandler struct {
	Service PostService
	Log     logrus.FieldLogger
}

func (h *PostHandler) SetupPostRoutes(r *mux.Router) {
	postsRouter := r.PathPrefix("/posts").Subrouter()
	postsRouter.HandleFunc("", h.GetPosts).Methods(http.MethodGet)
	postsRouter.HandleFunc("", h.CreatePost).Methods(http.MethodPost)
	postsRouter.HandleFunc("/{id}", h.GetPost).Methods(http.MethodGet)
	postsRouter.HandleFunc("/{id}", h.UpdatePost).Methods(http.MethodPatch)
	postsRouter.HandleFunc("/{id}", h.DeletePost).Methods(http.MethodDelete)
}

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	middlewares.RespondJSON(w, posts, http.StatusOK)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	post, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middlewares.RespondJSON(w, post, http.StatusOK)
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in models.CreatePostInput
	if !decodeBody(w, r, &in) {
		return
	}

	post, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middlewares.RespondJSON(w, post, http.StatusCreated)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in models.UpdatePostInput
	if !decodeBody(w, r, &in) {
		return
	}

	post, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middlewares.RespondJSON(w, post, http.StatusOK)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID accepts only the canonical 36 character uuid form.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		middlewares.RespondError(w, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody reads a JSON object into dst. An empty body decodes as {} so
// that missing fields are reported by validation.
// Anything after the JSON value other than whitespace is rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return true
	}
	if err == nil {
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return true
		}
		if err == nil {
			err = errors.New("trailing data after JSON body")
		}
	}

	if verr := validation.FromDecodeError(err); verr != nil {
		middlewares.RespondError(w, http.StatusBadRequest, "Validation failed", verr.Errors...)
		return false
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middlewares.RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	middlewares.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
	return false
}

func (h *PostHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		h.Log.WithError(err).Debug("rejected invalid post payload")
		middlewares.RespondError(w, http.StatusBadRequest, "Validation failed", verr.Errors...)
	case errors.Is(err, services.ErrPostNotFound):
		h.Log.WithField("path", r.URL.Path).Debug("post not found")
		middlewares.RespondError(w, http.StatusNotFound, "Post not found.")
	default:
		h.Log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("post request failed")
		middlewares.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
