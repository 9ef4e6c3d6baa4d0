package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/middleware"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/response"
)

type widgetService interface {
	List(ctx context.Context, uid string) ([]*models.Widget, error)
	Create(ctx context.Context, uid string, w models.Widget) (*models.Widget, error)
	Refresh(ctx context.Context, uid, widgetID string) (*dto.RefreshResponse, error)
	Delete(ctx context.Context, uid, widgetID string) error
	View(ctx context.Context, uid, widgetID string) (json.RawMessage, error)
	UpdateDefaults(ctx context.Context, uid, widgetID string, defaults map[string]float64) (*models.Widget, error)
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       widgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

// WidgetRoutes serves the widget store contract. List, refresh and delete
// bodies are bare JSON, not the success envelope.
func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.Post("/", h.CreateWidget)
	r.Post("/{widgetId}/refresh", h.RefreshWidget)
	r.Get("/{widgetId}/view", h.ViewWidget)
	r.Put("/{widgetId}/defaults", h.UpdateDefaults)
	r.Delete("/{widgetId}", h.DeleteWidget)
	return r
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	widgets, err := h.WidgetSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if widgets == nil {
		widgets = []*models.Widget{}
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, widgets)
}

func (h *widgetHandlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req models.Widget
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.WidgetSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusCreated, widget)
}

func (h *widgetHandlers) RefreshWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	resp, err := h.WidgetSvc.Refresh(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.WriteRefreshError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, resp)
}

func (h *widgetHandlers) ViewWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	view, err := h.WidgetSvc.View(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *widgetHandlers) UpdateDefaults(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateDefaultsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.WidgetSvc.UpdateDefaults(r.Context(), uid, widgetID, req.Defaults)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.WidgetSvc.Delete(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.DeleteResponse{
		Status:  "success",
		Message: "Widget deleted",
	})
}
