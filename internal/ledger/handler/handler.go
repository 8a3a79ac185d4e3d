package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/ledger/models"
	id "foodshare/pkg/domain"
	dErrors "foodshare/pkg/domain-errors"
	"foodshare/pkg/platform/httputil"
	"foodshare/pkg/requestcontext"
)

// Service defines the ledger operations the handler exposes. Handlers never
// embed business logic; every rule lives in the service.
type Service interface {
	CreateDonation(ctx context.Context, caller id.Identity, req *models.CreateDonationRequest) (*models.Donation, error)
	ClaimDonation(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error)
	MarkPickedUp(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error)
	CompleteDonation(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error)
	CancelDonation(ctx context.Context, caller id.Identity, donationID id.DonationID, reason string) (*models.Donation, error)
	ForceComplete(ctx context.Context, caller id.Identity, donationID id.DonationID) (*models.Donation, error)
	ForceCancel(ctx context.Context, caller id.Identity, donationID id.DonationID, reason string) (*models.Donation, error)
	TransferAdministration(ctx context.Context, caller, newAdmin id.Identity) error
	GetDonation(ctx context.Context, donationID id.DonationID) (*models.Donation, error)
	LatestDonations(ctx context.Context, limit int) ([]*models.Donation, error)
	DonationsForDonor(ctx context.Context, donor id.Identity) ([]*models.Donation, error)
	DonationsForRecipient(ctx context.Context, recipient id.Identity) ([]*models.Donation, error)
	DonationCount(ctx context.Context) (uint64, error)
}

// Handler handles donation ledger endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// Register mounts the ledger routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/donations", h.handleCreate)
	r.Get("/donations", h.handleLatest)
	r.Get("/donations/count", h.handleCount)
	r.Get("/donations/{id}", h.handleGet)
	r.Post("/donations/{id}/claim", h.handleTransition(h.ledger.ClaimDonation))
	r.Post("/donations/{id}/pickup", h.handleTransition(h.ledger.MarkPickedUp))
	r.Post("/donations/{id}/complete", h.handleTransition(h.ledger.CompleteDonation))
	r.Post("/donations/{id}/cancel", h.handleCancel(h.ledger.CancelDonation))
	r.Get("/donors/{identity}/donations", h.handleListFor(h.ledger.DonationsForDonor))
	r.Get("/recipients/{identity}/donations", h.handleListFor(h.ledger.DonationsForRecipient))

	r.Post("/admin/donations/{id}/complete", h.handleTransition(h.ledger.ForceComplete))
	r.Post("/admin/donations/{id}/cancel", h.handleCancel(h.ledger.ForceCancel))
	r.Post("/admin/transfer", h.handleTransfer)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create donation request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	donation, err := h.ledger.CreateDonation(ctx, requestcontext.Identity(ctx), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, donation)
}

func (h *Handler) handleTransition(transition func(context.Context, id.Identity, id.DonationID) (*models.Donation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donationID, err := donationIDFromURL(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		donation, err := transition(ctx, requestcontext.Identity(ctx), donationID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, donation)
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleCancel(cancel func(context.Context, id.Identity, id.DonationID, string) (*models.Donation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donationID, err := donationIDFromURL(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		// Reason is optional; an empty body is a cancellation without one.
		var req cancelRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		donation, err := cancel(ctx, requestcontext.Identity(ctx), donationID, req.Reason)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, donation)
	}
}

type transferRequest struct {
	NewAdmin string `json:"new_admin"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.ledger.TransferAdministration(ctx, requestcontext.Identity(ctx), id.Identity(req.NewAdmin)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donationID, err := donationIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donation, err := h.ledger.GetDonation(ctx, donationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, donation)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
		limit = parsed
	}

	donations, err := h.ledger.LatestDonations(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"donations": donations})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.DonationCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) handleListFor(list func(context.Context, id.Identity) ([]*models.Donation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid identity"))
			return
		}
		donations, err := list(ctx, identity)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"donations": donations})
	}
}

func donationIDFromURL(r *http.Request) (id.DonationID, error) {
	donationID, err := id.ParseDonationID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid donation id")
	}
	return donationID, nil
}
