package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/middleware"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/response"
)

type bankService interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	LinkBank(ctx context.Context, uid string, req dto.LinkBankRequest) (*models.Bank, error)
	ListBanks(ctx context.Context, uid string) ([]*models.Bank, error)
	DeleteBank(ctx context.Context, uid, bankID string) error
	Sync(ctx context.Context, uid string, bankID *string) (dto.SyncResult, error)
}

type bankHandlers struct {
	ResponseHandler response.ResponseHandler
	BankSvc         bankService
}

func NewBankHandlers(deps *Deps) *bankHandlers {
	return &bankHandlers{
		ResponseHandler: deps.ResponseHandler,
		BankSvc:         deps.BankSvc,
	}
}

func (h *bankHandlers) BankRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/link-token", h.CreateLinkToken)
	r.Post("/sync", h.Sync)
	r.Post("/", h.LinkBank)
	r.Get("/", h.ListBanks)
	r.Delete("/{bankId}", h.DeleteBank)
	return r
}

func (h *bankHandlers) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	linkToken, err := h.BankSvc.CreateLinkToken(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"linkToken": linkToken})
}

func (h *bankHandlers) LinkBank(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkBankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	bank, err := h.BankSvc.LinkBank(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, bank)
}

func (h *bankHandlers) ListBanks(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	banks, err := h.BankSvc.ListBanks(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if banks == nil {
		banks = []*models.Bank{}
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, banks)
}

func (h *bankHandlers) DeleteBank(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	bankID := chi.URLParam(r, "bankId")

	if err := h.BankSvc.DeleteBank(r.Context(), uid, bankID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// Sync accepts an empty body to sync every linked bank.
func (h *bankHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}

	uid := middleware.UID(r.Context())
	result, err := h.BankSvc.Sync(r.Context(), uid, req.BankID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}
