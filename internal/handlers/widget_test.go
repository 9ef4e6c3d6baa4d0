package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/middleware"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// --- Stubs ---

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	writeJSONCalled bool
	writeJSONStatus int
	writeJSONData   any

	handleErrorCalled bool
	handleError       error

	refreshErrorCalled bool
	refreshError       error

	errorWriteCalled bool
	errorWriteStatus int
	errorWriteCode   string
	errorWriteMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteJSON(w http.ResponseWriter, _ *http.Request, status int, v any) {
	s.writeJSONCalled = true
	s.writeJSONStatus = status
	s.writeJSONData = v
	w.WriteHeader(status)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.errorWriteCalled = true
	s.errorWriteStatus = status
	s.errorWriteCode = code
	s.errorWriteMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

func (s *stubResponseHandler) WriteRefreshError(w http.ResponseWriter, _ *http.Request, err error) {
	s.refreshErrorCalled = true
	s.refreshError = err
	w.WriteHeader(http.StatusInternalServerError)
}

type stubWidgetService struct {
	listWidgets    []*models.Widget
	listErr        error
	created        *models.Widget
	createErr      error
	lastCreate     models.Widget
	refreshResp    *dto.RefreshResponse
	refreshErr     error
	deleteErr      error
	view           json.RawMessage
	viewErr        error
	defaultsWidget *models.Widget
	defaultsErr    error
	lastDefaults   map[string]float64
	lastUID        string
	lastID         string
}

func (s *stubWidgetService) List(_ context.Context, uid string) ([]*models.Widget, error) {
	s.lastUID = uid
	return s.listWidgets, s.listErr
}

func (s *stubWidgetService) Create(_ context.Context, uid string, w models.Widget) (*models.Widget, error) {
	s.lastUID = uid
	s.lastCreate = w
	return s.created, s.createErr
}

func (s *stubWidgetService) Refresh(_ context.Context, uid, widgetID string) (*dto.RefreshResponse, error) {
	s.lastUID, s.lastID = uid, widgetID
	return s.refreshResp, s.refreshErr
}

func (s *stubWidgetService) Delete(_ context.Context, uid, widgetID string) error {
	s.lastUID, s.lastID = uid, widgetID
	return s.deleteErr
}

func (s *stubWidgetService) View(_ context.Context, uid, widgetID string) (json.RawMessage, error) {
	s.lastUID, s.lastID = uid, widgetID
	return s.view, s.viewErr
}

func (s *stubWidgetService) UpdateDefaults(_ context.Context, uid, widgetID string, defaults map[string]float64) (*models.Widget, error) {
	s.lastUID, s.lastID = uid, widgetID
	s.lastDefaults = defaults
	return s.defaultsWidget, s.defaultsErr
}

// withUID injects a UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- Tests ---

func TestListWidgets_OK(t *testing.T) {
	svc := &stubWidgetService{listWidgets: []*models.Widget{{WidgetID: "w1"}}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodGet, "/widgets", nil), "uid1")
	rr := httptest.NewRecorder()
	h.ListWidgets(rr, req)

	if !resp.writeJSONCalled || resp.writeJSONStatus != http.StatusOK {
		t.Fatalf("expected bare JSON 200, got called=%v status=%d", resp.writeJSONCalled, resp.writeJSONStatus)
	}
	if svc.lastUID != "uid1" {
		t.Fatalf("uid not passed: %q", svc.lastUID)
	}
}

func TestListWidgets_EmptyIsArray(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: &stubWidgetService{}})

	rr := httptest.NewRecorder()
	h.ListWidgets(rr, withUID(httptest.NewRequest(http.MethodGet, "/widgets", nil), "uid1"))

	if ws, ok := resp.writeJSONData.([]*models.Widget); !ok || ws == nil {
		t.Fatalf("expected empty slice, got %#v", resp.writeJSONData)
	}
}

func TestCreateWidget_BadBody(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"title":`))
	rr := httptest.NewRecorder()
	h.CreateWidget(rr, withUID(req, "uid1"))

	var ve *errs.ValidationError
	if !resp.handleErrorCalled || !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestCreateWidget_OK(t *testing.T) {
	svc := &stubWidgetService{created: &models.Widget{WidgetID: "new"}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"title":"Spending","kind":"chart","dataMode":"static","visualConfig":{"chartType":"pie"}}`
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateWidget(rr, withUID(req, "uid1"))

	if resp.writeJSONStatus != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.writeJSONStatus)
	}
	if svc.lastCreate.Title != "Spending" || svc.lastCreate.VisualConfig.ChartType != models.ChartPie {
		t.Fatalf("unexpected decoded widget %+v", svc.lastCreate)
	}
}

func TestRefreshWidget_OK(t *testing.T) {
	svc := &stubWidgetService{refreshResp: &dto.RefreshResponse{Status: dto.RefreshStatusSuccess}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/widgets/w1/refresh", nil)
	req = withChiParam(withUID(req, "uid1"), "widgetId", "w1")
	rr := httptest.NewRecorder()
	h.RefreshWidget(rr, req)

	if svc.lastID != "w1" || !resp.writeJSONCalled {
		t.Fatalf("expected refresh of w1 written as JSON")
	}
}

func TestRefreshWidget_ErrorUsesRefreshShape(t *testing.T) {
	svc := &stubWidgetService{refreshErr: errs.NewValidationError("not refreshable")}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/widgets/w1/refresh", nil)
	req = withChiParam(withUID(req, "uid1"), "widgetId", "w1")
	rr := httptest.NewRecorder()
	h.RefreshWidget(rr, req)

	if !resp.refreshErrorCalled || resp.handleErrorCalled {
		t.Fatalf("expected WriteRefreshError only")
	}
}

func TestViewWidget_NotFound(t *testing.T) {
	svc := &stubWidgetService{viewErr: errs.NewNotFoundError("widget not found")}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets/w9/view", nil)
	req = withChiParam(withUID(req, "uid1"), "widgetId", "w9")
	rr := httptest.NewRecorder()
	h.ViewWidget(rr, req)

	if !resp.handleErrorCalled || svc.lastID != "w9" {
		t.Fatalf("expected HandleError for w9")
	}
}

func TestUpdateDefaults_OK(t *testing.T) {
	svc := &stubWidgetService{defaultsWidget: &models.Widget{WidgetID: "sim"}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/widgets/sim/defaults", strings.NewReader(`{"defaults":{"interestRate":5.5}}`))
	req = withChiParam(withUID(req, "uid1"), "widgetId", "sim")
	rr := httptest.NewRecorder()
	h.UpdateDefaults(rr, req)

	if !resp.writeSuccessCalled || svc.lastDefaults["interestRate"] != 5.5 {
		t.Fatalf("unexpected defaults %v", svc.lastDefaults)
	}
}

func TestDeleteWidget(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError bool
	}{
		{"ok", nil, false},
		{"missing", errs.NewNotFoundError("widget not found"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubWidgetService{deleteErr: tt.err}
			resp := &stubResponseHandler{}
			h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

			req := httptest.NewRequest(http.MethodDelete, "/widgets/w1", nil)
			req = withChiParam(withUID(req, "uid1"), "widgetId", "w1")
			rr := httptest.NewRecorder()
			h.DeleteWidget(rr, req)

			if resp.handleErrorCalled != tt.wantError || resp.writeJSONCalled == tt.wantError {
				t.Fatalf("handleError=%v writeJSON=%v", resp.handleErrorCalled, resp.writeJSONCalled)
			}
		})
	}
}
