package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/registry/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/httputil"
	"foodshare/pkg/requestcontext"
)

// Service defines the registry operations the handler exposes.
type Service interface {
	RegisterDonor(ctx context.Context, caller id.Identity, name, contact string) (*models.Profile, error)
	RegisterRecipient(ctx context.Context, caller id.Identity, name, contact string) (*models.Profile, error)
	UnregisterDonor(ctx context.Context, caller id.Identity) error
	UnregisterRecipient(ctx context.Context, caller id.Identity) error
	GetDonor(ctx context.Context, identity id.Identity) (*models.Profile, error)
	GetRecipient(ctx context.Context, identity id.Identity) (*models.Profile, error)
}

// Handler handles registry endpoints. Registration always applies to the
// authenticated caller; profiles of others are read-only.
type Handler struct {
	logger   *slog.Logger
	registry Service
}

func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// Register mounts the registry routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/donors", h.handleRegister(h.registry.RegisterDonor))
	r.Delete("/donors", h.handleUnregister(h.registry.UnregisterDonor))
	r.Get("/donors/{identity}", h.handleGet(h.registry.GetDonor))
	r.Post("/recipients", h.handleRegister(h.registry.RegisterRecipient))
	r.Delete("/recipients", h.handleUnregister(h.registry.UnregisterRecipient))
	r.Get("/recipients/{identity}", h.handleGet(h.registry.GetRecipient))
}

type registerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func (h *Handler) handleRegister(register func(context.Context, id.Identity, string, string) (*models.Profile, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "invalid register request",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}

		profile, err := register(ctx, requestcontext.Identity(ctx), req.Name, req.Contact)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, profile)
	}
}

func (h *Handler) handleUnregister(unregister func(context.Context, id.Identity) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := unregister(ctx, requestcontext.Identity(ctx)); err != nil {
			httputil.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleGet(get func(context.Context, id.Identity) (*models.Profile, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid identity"))
			return
		}
		profile, err := get(ctx, identity)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, profile)
	}
}
