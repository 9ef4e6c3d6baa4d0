package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/helpers"
)

// --- Fakes ---

type fakeWidgetStore struct {
	widgets        map[string]*models.Widget
	updateErr      error
	deleteErr      error
	updated        int
	lastDefaults   map[string]float64
	deletedWidgets []string
}

func newFakeWidgetStore(ws ...*models.Widget) *fakeWidgetStore {
	f := &fakeWidgetStore{widgets: make(map[string]*models.Widget)}
	for _, w := range ws {
		f.widgets[w.WidgetID] = w
	}
	return f
}

func (f *fakeWidgetStore) Create(_ context.Context, _ string, w *models.Widget) error {
	if _, ok := f.widgets[w.WidgetID]; ok {
		return errs.NewConflictError("widget already exists")
	}
	f.widgets[w.WidgetID] = w
	return nil
}

func (f *fakeWidgetStore) Get(_ context.Context, _, widgetID string) (*models.Widget, error) {
	w, ok := f.widgets[widgetID]
	if !ok {
		return nil, errs.NewNotFoundError("widget not found")
	}
	cp := w.Clone()
	return &cp, nil
}

func (f *fakeWidgetStore) List(_ context.Context, _ string) ([]*models.Widget, error) {
	out := make([]*models.Widget, 0, len(f.widgets))
	for _, w := range f.widgets {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWidgetStore) Update(_ context.Context, _ string, w *models.Widget) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated++
	f.widgets[w.WidgetID] = w
	return nil
}

func (f *fakeWidgetStore) UpdateDefaults(_ context.Context, _, widgetID string, defaults map[string]float64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lastDefaults = defaults
	f.widgets[widgetID].SimulationConfig.Defaults = defaults
	return nil
}

func (f *fakeWidgetStore) Delete(_ context.Context, _, widgetID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedWidgets = append(f.deletedWidgets, widgetID)
	delete(f.widgets, widgetID)
	return nil
}

type fakeResolver struct {
	rows     []models.Row
	err      error
	deadline bool
}

func (f *fakeResolver) Resolve(ctx context.Context, _ string, _ models.QueryConfig) ([]models.Row, error) {
	_, f.deadline = ctx.Deadline()
	return f.rows, f.err
}

var widgetNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func newTestWidgetService(store *fakeWidgetStore, resolver *fakeResolver) *widgetService {
	svc := NewWidgetService(store, resolver, 0)
	svc.clockNow = func() time.Time { return widgetNow }
	svc.newID = func() string { return "generated-id" }
	return svc
}

func dynamicWidget(id string) *models.Widget {
	return &models.Widget{
		WidgetID:     id,
		Title:        "Spending",
		Kind:         models.KindChart,
		DataMode:     models.DataModeDynamic,
		VisualConfig: models.VisualConfig{ChartType: models.ChartBar},
		QueryConfig:  &models.QueryConfig{QueryType: models.QuerySpendingByCategory, TimeRange: models.RangeThisMonth},
	}
}

func loanWidget(id string) *models.Widget {
	return &models.Widget{
		WidgetID: id,
		Title:    "Mortgage",
		Kind:     models.KindSimulation,
		DataMode: models.DataModeStatic,
		SimulationConfig: &models.SimulationConfig{
			SimulationType: models.SimLoanRepayment,
			Defaults:       map[string]float64{"principal": 300000},
		},
	}
}

// --- Tests ---

func TestCreateAssignsIDAndOwner(t *testing.T) {
	store := newFakeWidgetStore()
	svc := newTestWidgetService(store, &fakeResolver{})

	in := *dynamicWidget("client-supplied")
	in.Owner = "someone-else"
	w, err := svc.Create(helpers.TestCtx(), "u1", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.WidgetID != "generated-id" || w.Owner != "u1" {
		t.Fatalf("unexpected widget %+v", w)
	}
	if _, ok := store.widgets["generated-id"]; !ok {
		t.Fatalf("widget not stored")
	}
}

func TestCreateRejectsInvalidWidget(t *testing.T) {
	svc := newTestWidgetService(newFakeWidgetStore(), &fakeResolver{})

	in := *dynamicWidget("")
	in.QueryConfig = nil
	_, err := svc.Create(helpers.TestCtx(), "u1", in)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRefreshWritesRowsAndStamps(t *testing.T) {
	store := newFakeWidgetStore(dynamicWidget("w1"))
	resolver := &fakeResolver{rows: []models.Row{
		models.NewRow(models.F("name", "Food"), models.F("value", 12.5)),
		models.NewRow(models.F("name", "Rent"), models.F("value", 900.0)),
	}}
	svc := newTestWidgetService(store, resolver)

	resp, err := svc.Refresh(helpers.TestCtx(), "u1", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolver.deadline {
		t.Fatalf("resolver should run under the refresh timeout")
	}
	if resp.Status != "success" || len(resp.DataPoints) != 2 || resp.Message != "Widget refreshed with 2 data points" {
		t.Fatalf("unexpected response %+v", resp)
	}
	stored := store.widgets["w1"]
	if stored.LastRefreshed == nil || !stored.LastRefreshed.Equal(widgetNow) {
		t.Fatalf("lastRefreshed not stamped: %v", stored.LastRefreshed)
	}
	if len(stored.VisualConfig.EmbeddedData) != 2 || stored.Title != "Spending" {
		t.Fatalf("stored widget not replaced whole: %+v", stored)
	}
}

func TestRefreshRejectsStaticAndSimulation(t *testing.T) {
	static := dynamicWidget("static")
	static.DataMode = models.DataModeStatic
	store := newFakeWidgetStore(static, loanWidget("sim"))
	svc := newTestWidgetService(store, &fakeResolver{})

	for _, id := range []string{"static", "sim"} {
		_, err := svc.Refresh(helpers.TestCtx(), "u1", id)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", id, err)
		}
	}
	if store.updated != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestRefreshResolverFailureLeavesWidget(t *testing.T) {
	store := newFakeWidgetStore(dynamicWidget("w1"))
	resolver := &fakeResolver{err: errors.New("deadline exceeded")}
	svc := newTestWidgetService(store, resolver)

	_, err := svc.Refresh(helpers.TestCtx(), "u1", "w1")
	if !errors.Is(err, resolver.err) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if store.updated != 0 || store.widgets["w1"].LastRefreshed != nil {
		t.Fatalf("widget should be untouched")
	}
}

func TestDeleteMissingWidget(t *testing.T) {
	store := newFakeWidgetStore()
	svc := newTestWidgetService(store, &fakeResolver{})

	err := svc.Delete(helpers.TestCtx(), "u1", "nope")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(store.deletedWidgets) != 0 {
		t.Fatalf("store delete should not be called")
	}
}

func TestViewRendersStoredRows(t *testing.T) {
	w := dynamicWidget("w1")
	w.VisualConfig.EmbeddedData = []models.Row{models.NewRow(models.F("name", "Food"), models.F("value", 1.0))}
	svc := newTestWidgetService(newFakeWidgetStore(w), &fakeResolver{})

	body, err := svc.View(helpers.TestCtx(), "u1", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(body), `{"view":"chart",`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestViewUnknownChartType(t *testing.T) {
	w := dynamicWidget("w1")
	w.VisualConfig.ChartType = "radar"
	svc := newTestWidgetService(newFakeWidgetStore(w), &fakeResolver{})

	body, err := svc.View(helpers.TestCtx(), "u1", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		View string `json:"view"`
	}
	if err := json.Unmarshal(body, &got); err != nil || got.View != "unknown" {
		t.Fatalf("expected unknown view, got %s", body)
	}
}

func TestUpdateDefaultsMerges(t *testing.T) {
	store := newFakeWidgetStore(loanWidget("sim"))
	svc := newTestWidgetService(store, &fakeResolver{})

	w, err := svc.UpdateDefaults(helpers.TestCtx(), "u1", "sim", map[string]float64{"interestRate": 5.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastDefaults["principal"] != 300000 || store.lastDefaults["interestRate"] != 5.5 {
		t.Fatalf("defaults not merged: %v", store.lastDefaults)
	}
	if w.SimulationConfig.Defaults["interestRate"] != 5.5 {
		t.Fatalf("returned widget not updated: %v", w.SimulationConfig.Defaults)
	}
}

func TestUpdateDefaultsRejects(t *testing.T) {
	store := newFakeWidgetStore(loanWidget("sim"), dynamicWidget("chart"))
	svc := newTestWidgetService(store, &fakeResolver{})

	tests := []struct {
		name     string
		id       string
		defaults map[string]float64
	}{
		{"non-simulation widget", "chart", map[string]float64{"principal": 1}},
		{"unknown parameter", "sim", map[string]float64{"horsepower": 300}},
	}
	for _, tt := range tests {
		_, err := svc.UpdateDefaults(helpers.TestCtx(), "u1", tt.id, tt.defaults)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tt.name, err)
		}
	}
	if store.lastDefaults != nil {
		t.Fatalf("nothing should be written")
	}
}
