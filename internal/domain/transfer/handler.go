package transfer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/middleware"
	"github.com/zinefold/zinefold-api/internal/pkg/response"
	"github.com/zinefold/zinefold-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type transferRequest struct {
	ToUserID string `json:"to_user_id" validate:"required,uuid"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		response.BadRequest(w, "invalid recipient id")
		return
	}

	result, err := h.svc.Transfer(r.Context(), userID, toUserID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSelfTransfer):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrWalletRequired):
			response.UnprocessableEntity(w, "both parties need a provisioned ledger wallet")
		case errors.Is(err, ErrTransferFailed):
			response.BadGateway(w, "ledger transfer failed")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Transfer)
	return r
}
