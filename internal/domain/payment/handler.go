package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/middleware"
	"github.com/zinefold/zinefold-api/internal/pkg/response"
	"github.com/zinefold/zinefold-api/internal/pkg/validator"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createCheckoutRequest struct {
	AmountUSD int64  `json:"amount_usd" validate:"required,gt=0"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	sess, err := h.svc.CreateCheckoutSession(r.Context(), userID, req.AmountUSD, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrProcessor):
			response.BadGateway(w, "payment processor unavailable")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, sess)
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")

	sess, err := h.svc.RetrieveCheckoutSession(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			response.NotFound(w, "checkout session not found")
		case errors.Is(err, ErrProcessor):
			response.BadGateway(w, "payment processor unavailable")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, sess)
}

// Webhook receives processor deliveries. It is mounted without auth;
// the signature header is the only credential.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "unreadable payload")
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	ack, err := h.svc.HandleWebhook(r.Context(), signature, payload)
	if err != nil {
		if errors.Is(err, ErrWebhookVerification) {
			response.BadRequest(w, "webhook verification failed")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, ack)
}

// Routes for authenticated checkout endpoints. The webhook is mounted
// separately because the processor cannot send a bearer token.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/checkout", h.CreateCheckout)
	r.Get("/checkout/{id}", h.GetCheckout)
	return r
}

// WebhookRoutes has no auth middleware.
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Webhook)
	return r
}
