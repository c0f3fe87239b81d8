package wallet

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/middleware"
	"github.com/zinefold/zinefold-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type walletResponse struct {
	LedgerAddress string `json:"ledger_address"`
	PayID         string `json:"payid,omitempty"`
	IsVerified    bool   `json:"is_verified"`
}

func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	wl, err := h.svc.Provision(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, walletResponse{
		LedgerAddress: wl.LedgerAddress,
		PayID:         wl.PayIDString(),
		IsVerified:    wl.IsVerified,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	wl, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoWallet) {
			response.NotFound(w, "wallet not provisioned")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, walletResponse{
		LedgerAddress: wl.LedgerAddress,
		PayID:         wl.PayIDString(),
		IsVerified:    wl.IsVerified,
	})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Provision)
	r.Get("/", h.Get)
	return r
}
