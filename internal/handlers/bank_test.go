package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

type stubBankService struct {
	lastUID    string
	lastLink   dto.LinkBankRequest
	lastSyncID *string
	deletedID  string
	banks      []*models.Bank
	err        error
}

func (s *stubBankService) CreateLinkToken(_ context.Context, uid string) (string, error) {
	s.lastUID = uid
	return "link-sandbox-1", s.err
}

func (s *stubBankService) LinkBank(_ context.Context, uid string, req dto.LinkBankRequest) (*models.Bank, error) {
	s.lastUID = uid
	s.lastLink = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Bank{BankID: "item-1", Institution: req.InstitutionName}, nil
}

func (s *stubBankService) ListBanks(_ context.Context, uid string) ([]*models.Bank, error) {
	s.lastUID = uid
	return s.banks, s.err
}

func (s *stubBankService) DeleteBank(_ context.Context, uid, bankID string) error {
	s.lastUID = uid
	s.deletedID = bankID
	return s.err
}

func (s *stubBankService) Sync(_ context.Context, uid string, bankID *string) (dto.SyncResult, error) {
	s.lastUID = uid
	s.lastSyncID = bankID
	return dto.SyncResult{BanksSynced: 1}, s.err
}

func TestLinkBank_Created(t *testing.T) {
	svc := &stubBankService{}
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: svc})

	body := strings.NewReader(`{"publicToken":"public-xyz","institutionName":"Chase"}`)
	req := withUID(httptest.NewRequest(http.MethodPost, "/banks", body), "u1")
	rr := httptest.NewRecorder()
	h.LinkBank(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected 201 success, got %+v", resp)
	}
	if svc.lastUID != "u1" || svc.lastLink.PublicToken != "public-xyz" || svc.lastLink.InstitutionName != "Chase" {
		t.Fatalf("unexpected link call uid=%q req=%+v", svc.lastUID, svc.lastLink)
	}
}

func TestLinkBank_BadBody(t *testing.T) {
	svc := &stubBankService{}
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/banks", strings.NewReader(`{`)), "u1")
	rr := httptest.NewRecorder()
	h.LinkBank(rr, req)

	var ve *errs.ValidationError
	if !resp.handleErrorCalled || !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
	if svc.lastUID != "" {
		t.Fatalf("service should not be called")
	}
}

func TestListBanks_EmptyIsSlice(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: &stubBankService{}})

	req := withUID(httptest.NewRequest(http.MethodGet, "/banks", nil), "u1")
	h.ListBanks(httptest.NewRecorder(), req)

	banks, ok := resp.writeSuccessData.([]*models.Bank)
	if !ok || banks == nil {
		t.Fatalf("expected empty slice, got %#v", resp.writeSuccessData)
	}
}

func TestDeleteBank_NotFound(t *testing.T) {
	svc := &stubBankService{err: errs.NewNotFoundError("bank not found")}
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: svc})

	req := withChiParam(withUID(httptest.NewRequest(http.MethodDelete, "/banks/b9", nil), "u1"), "bankId", "b9")
	h.DeleteBank(httptest.NewRecorder(), req)

	if svc.deletedID != "b9" || !resp.handleErrorCalled {
		t.Fatalf("expected HandleError for b9, deleted=%q", svc.deletedID)
	}
}

func TestSync_EmptyBodySyncsAll(t *testing.T) {
	svc := &stubBankService{}
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/banks/sync", nil), "u1")
	h.Sync(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || svc.lastSyncID != nil {
		t.Fatalf("expected sync of every bank, got %v", svc.lastSyncID)
	}
}

func TestSync_OneBank(t *testing.T) {
	svc := &stubBankService{}
	resp := &stubResponseHandler{}
	h := NewBankHandlers(&Deps{ResponseHandler: resp, BankSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/banks/sync", strings.NewReader(`{"bankId":"item-1"}`)), "u1")
	h.Sync(httptest.NewRecorder(), req)

	if svc.lastSyncID == nil || *svc.lastSyncID != "item-1" {
		t.Fatalf("expected item-1, got %v", svc.lastSyncID)
	}
}
