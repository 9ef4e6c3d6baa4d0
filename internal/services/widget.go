package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/render"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const DefaultRefreshTimeout = 30 * time.Second

// widgetStore is the Firestore storage interface for widgets.
type widgetStore interface {
	Create(ctx context.Context, uid string, w *models.Widget) error
	Get(ctx context.Context, uid, widgetID string) (*models.Widget, error)
	List(ctx context.Context, uid string) ([]*models.Widget, error)
	Update(ctx context.Context, uid string, w *models.Widget) error
	UpdateDefaults(ctx context.Context, uid, widgetID string, defaults map[string]float64) error
	Delete(ctx context.Context, uid, widgetID string) error
}

// rowResolver turns a query config into chart rows.
type rowResolver interface {
	Resolve(ctx context.Context, uid string, qc models.QueryConfig) ([]models.Row, error)
}

type widgetService struct {
	store          widgetStore
	resolver       rowResolver
	refreshTimeout time.Duration
	clockNow       func() time.Time
	newID          func() string
}

func NewWidgetService(store widgetStore, resolver rowResolver, refreshTimeout time.Duration) *widgetService {
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	return &widgetService{
		store:          store,
		resolver:       resolver,
		refreshTimeout: refreshTimeout,
		clockNow:       time.Now,
		newID:          uuid.NewString,
	}
}

func (s *widgetService) List(ctx context.Context, uid string) ([]*models.Widget, error) {
	return s.store.List(ctx, uid)
}

func (s *widgetService) Get(ctx context.Context, uid, widgetID string) (*models.Widget, error) {
	return s.store.Get(ctx, uid, widgetID)
}

// Create stores a new widget for uid. The id and owner are always assigned
// here; whatever the caller sent for them is discarded.
func (s *widgetService) Create(ctx context.Context, uid string, w models.Widget) (*models.Widget, error) {
	w.WidgetID = s.newID()
	w.Owner = uid
	w.LastRefreshed = nil
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, uid, &w); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("widget created", "widget_id", w.WidgetID, "kind", w.Kind)
	return &w, nil
}

// Refresh re-runs a dynamic widget's query, writes the rows into its visual
// config and replaces the stored widget.
func (s *widgetService) Refresh(ctx context.Context, uid, widgetID string) (*dto.RefreshResponse, error) {
	log, ctx := logger.With(ctx, "widget_id", widgetID)

	w, err := s.store.Get(ctx, uid, widgetID)
	if err != nil {
		return nil, err
	}
	if !w.Refreshable() || w.QueryConfig == nil {
		return nil, errs.NewValidationError("only dynamic, non-simulation widgets can be refreshed")
	}

	rctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	log.Info("refreshing widget", "query_type", w.QueryConfig.QueryType)
	rows, err := s.resolver.Resolve(rctx, uid, *w.QueryConfig)
	if err != nil {
		log.Error("widget query failed", "error", err)
		return nil, fmt.Errorf("resolve widget query: %w", err)
	}

	now := s.clockNow()
	w.VisualConfig.EmbeddedData = rows
	w.LastRefreshed = &now
	if err := s.store.Update(ctx, uid, w); err != nil {
		return nil, err
	}

	log.Info("widget refreshed", "data_points", len(rows))
	return &dto.RefreshResponse{
		Status:     dto.RefreshStatusSuccess,
		Message:    fmt.Sprintf("Widget refreshed with %d data points", len(rows)),
		Widget:     w,
		DataPoints: rows,
	}, nil
}

func (s *widgetService) Delete(ctx context.Context, uid, widgetID string) error {
	if _, err := s.store.Get(ctx, uid, widgetID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, uid, widgetID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("widget deleted", "widget_id", widgetID)
	return nil
}

// View renders a stored widget into its tagged view body.
func (s *widgetService) View(ctx context.Context, uid, widgetID string) (json.RawMessage, error) {
	w, err := s.store.Get(ctx, uid, widgetID)
	if err != nil {
		return nil, err
	}
	return render.Envelope(render.Safe(ctx, w, w.VisualConfig.EmbeddedData))
}

// UpdateDefaults merges defaults into a simulation widget's stored defaults.
// Keys the simulator does not know are rejected; values are stored as sent
// and clamped when a session is seeded from them.
func (s *widgetService) UpdateDefaults(ctx context.Context, uid, widgetID string, defaults map[string]float64) (*models.Widget, error) {
	w, err := s.store.Get(ctx, uid, widgetID)
	if err != nil {
		return nil, err
	}
	if !w.IsSimulation() || w.SimulationConfig == nil {
		return nil, errs.NewValidationError("defaults can only be updated on simulation widgets")
	}

	sliders, err := simulation.Controls(w.SimulationConfig.SimulationType)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(sliders))
	for _, sl := range sliders {
		known[sl.Key] = true
	}

	merged := make(map[string]float64, len(w.SimulationConfig.Defaults)+len(defaults))
	for k, v := range w.SimulationConfig.Defaults {
		merged[k] = v
	}
	for k, v := range defaults {
		if !known[k] {
			return nil, errs.NewValidationError(fmt.Sprintf("unknown parameter %q for %s", k, w.SimulationConfig.SimulationType))
		}
		merged[k] = v
	}

	if err := s.store.UpdateDefaults(ctx, uid, widgetID, merged); err != nil {
		return nil, err
	}
	w.SimulationConfig.Defaults = merged
	logger.FromContext(ctx).Info("simulation defaults updated", "widget_id", widgetID, "keys", len(defaults))
	return w, nil
}
