package token

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/domain/credit"
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

type createTokenRequest struct {
	Code          string `json:"code" validate:"required,token_code"`
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Description   string `json:"description" validate:"max=1000"`
	InitialSupply int64  `json:"initial_supply" validate:"required,gt=0"`
	PricePerToken int64  `json:"price_per_token" validate:"required,gt=0"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	t, err := h.svc.CreateToken(r.Context(), userID, CreateTokenInput{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		InitialSupply: req.InitialSupply,
		PricePerToken: req.PricePerToken,
	})
	if err != nil {
		if errors.Is(err, ErrWalletRequired) {
			response.UnprocessableEntity(w, "provision a ledger wallet before minting tokens")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, t)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tokenID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid token id")
		return
	}

	t, err := h.svc.Get(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			response.NotFound(w, "token not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, t)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	tokens, err := h.svc.ListByCreator(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, tokens)
}

func (h *Handler) EstablishTrustLine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	tokenID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid token id")
		return
	}

	tl, err := h.svc.EstablishTrustLine(r.Context(), userID, tokenID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			response.NotFound(w, "token not found")
		case errors.Is(err, ErrWalletRequired):
			response.UnprocessableEntity(w, "provision a ledger wallet first")
		case errors.Is(err, ErrTrustLineFailed):
			response.BadGateway(w, "ledger rejected the trust line")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, tl)
}

type purchaseRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	tokenID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid token id")
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	result, err := h.svc.Purchase(r.Context(), userID, tokenID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			response.NotFound(w, "token not found")
		case errors.Is(err, ErrWalletRequired):
			response.UnprocessableEntity(w, "provision a ledger wallet first")
		case errors.Is(err, ErrTrustLineMissing):
			response.UnprocessableEntity(w, "establish a trust line to this token first")
		case errors.Is(err, credit.ErrInsufficientCredits):
			response.UnprocessableEntity(w, "insufficient credits")
		case errors.Is(err, ErrInsufficientSupply):
			response.Conflict(w, "insufficient token supply")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	zineID, err := uuid.Parse(chi.URLParam(r, "zineID"))
	if err != nil {
		response.BadRequest(w, "invalid zine id")
		return
	}

	allowed, err := h.svc.HasAccess(r.Context(), userID, zineID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"access": allowed})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/mine", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/trustline", h.EstablishTrustLine)
	r.Post("/{id}/purchase", h.Purchase)
	r.Get("/access/{zineID}", h.Access)
	return r
}
