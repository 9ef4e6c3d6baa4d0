package models

import (
	"time"
)

type WidgetKind string

const (
	KindChart      WidgetKind = "chart"
	KindTable      WidgetKind = "table"
	KindMetric     WidgetKind = "metric"
	KindCustom     WidgetKind = "custom"
	KindSimulation WidgetKind = "simulation"
)

type DataMode string

const (
	DataModeStatic  DataMode = "static"
	DataModeDynamic DataMode = "dynamic"
)

type ChartType string

const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartArea    ChartType = "area"
	ChartScatter ChartType = "scatter"
)

type SimulationType string

const (
	SimLoanRepayment        SimulationType = "loan_repayment"
	SimSavingsProjector     SimulationType = "savings_projector"
	SimBudgetPlanner        SimulationType = "budget_planner"
	SimRetirementCalculator SimulationType = "retirement_calculator"
	SimEmergencyFund        SimulationType = "emergency_fund"
)

// SimulationTypes lists every simulator in display order.
var SimulationTypes = []SimulationType{
	SimLoanRepayment,
	SimSavingsProjector,
	SimBudgetPlanner,
	SimRetirementCalculator,
	SimEmergencyFund,
}

type QueryType string

const (
	QuerySpendingByCategory    QueryType = "spending_by_category"
	QueryMonthlyTrend          QueryType = "monthly_trend"
	QueryMonthlyIncomeExpenses QueryType = "monthly_income_expenses"
	QueryAccountBalances       QueryType = "account_balances"
	QueryTopMerchants          QueryType = "top_merchants"
	QueryDailySpending         QueryType = "daily_spending"
	QueryCategoryTrend         QueryType = "category_trend"
)

type TimeRange string

const (
	RangeLast7Days    TimeRange = "last_7_days"
	RangeLast30Days   TimeRange = "last_30_days"
	RangeThisMonth    TimeRange = "this_month"
	RangeLast3Months  TimeRange = "last_3_months"
	RangeLast6Months  TimeRange = "last_6_months"
	RangeLast12Months TimeRange = "last_12_months"
	RangeThisYear     TimeRange = "this_year"
	RangeAllTime      TimeRange = "all_time"
)

// Widget is a persisted, user-visible chart or simulator specification.
type Widget struct {
	WidgetID         string            `firestore:"widgetId" json:"id"`
	Owner            string            `firestore:"owner" json:"owner"`
	Title            string            `firestore:"title" json:"title"`
	Description      string            `firestore:"description,omitempty" json:"description,omitempty"`
	Kind             WidgetKind        `firestore:"kind" json:"kind"`
	VisualConfig     VisualConfig      `firestore:"visualConfig" json:"visualConfig"`
	Code             string            `firestore:"code,omitempty" json:"code,omitempty"`
	DataMode         DataMode          `firestore:"dataMode" json:"dataMode"`
	QueryConfig      *QueryConfig      `firestore:"queryConfig,omitempty" json:"queryConfig,omitempty"`
	LastRefreshed    *time.Time        `firestore:"lastRefreshed,omitempty" json:"lastRefreshed,omitempty"`
	SimulationConfig *SimulationConfig `firestore:"simulationConfig,omitempty" json:"simulationConfig,omitempty"`
	CreatedAt        time.Time         `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `firestore:"updatedAt" json:"updatedAt"`
}

// VisualConfig describes how a non-simulation widget is drawn.
// Static widgets carry their rows in EmbeddedData; dynamic widgets get them
// written there on every refresh.
type VisualConfig struct {
	ChartType    ChartType      `firestore:"chartType" json:"chartType"`
	DataSource   string         `firestore:"dataSource,omitempty" json:"dataSource,omitempty"`
	Colors       []string       `firestore:"colors,omitempty" json:"colors,omitempty"`
	Title        string         `firestore:"title,omitempty" json:"title,omitempty"`
	XAxis        string         `firestore:"xAxis,omitempty" json:"xAxis,omitempty"`
	YAxis        string         `firestore:"yAxis,omitempty" json:"yAxis,omitempty"`
	Filters      map[string]any `firestore:"filters,omitempty" json:"filters,omitempty"`
	EmbeddedData []Row          `firestore:"embeddedData,omitempty" json:"embeddedData,omitempty"`
}

// CategoryKey is the field holding the category/label of each row.
func (c VisualConfig) CategoryKey() string {
	if c.XAxis == "" {
		return "name"
	}
	return c.XAxis
}

// ValueKey is the field holding the magnitude of each row.
func (c VisualConfig) ValueKey() string {
	if c.YAxis == "" {
		return "value"
	}
	return c.YAxis
}

type QueryConfig struct {
	QueryType QueryType      `firestore:"queryType" json:"queryType"`
	TimeRange TimeRange      `firestore:"timeRange" json:"timeRange"`
	Filters   map[string]any `firestore:"filters,omitempty" json:"filters,omitempty"`
}

// SimulationConfig seeds an interactive simulator. Defaults is a partial
// parameter map; missing parameters fall back to the simulator's own defaults.
type SimulationConfig struct {
	SimulationType SimulationType     `firestore:"simulationType" json:"simulationType"`
	Defaults       map[string]float64 `firestore:"defaults,omitempty" json:"defaults,omitempty"`
}

func (w *Widget) IsSimulation() bool {
	return w.Kind == KindSimulation
}

// Refreshable reports whether the widget's data comes from the query resolver.
func (w *Widget) Refreshable() bool {
	return !w.IsSimulation() && w.DataMode == DataModeDynamic
}

// Clone returns a deep copy so callers can swap whole widgets without sharing
// nested slices or maps.
func (w Widget) Clone() Widget {
	out := w
	out.VisualConfig.Colors = append([]string(nil), w.VisualConfig.Colors...)
	out.VisualConfig.Filters = cloneMap(w.VisualConfig.Filters)
	if w.VisualConfig.EmbeddedData != nil {
		out.VisualConfig.EmbeddedData = make([]Row, len(w.VisualConfig.EmbeddedData))
		for i, r := range w.VisualConfig.EmbeddedData {
			out.VisualConfig.EmbeddedData[i] = r.Clone()
		}
	}
	if w.QueryConfig != nil {
		qc := *w.QueryConfig
		qc.Filters = cloneMap(w.QueryConfig.Filters)
		out.QueryConfig = &qc
	}
	if w.LastRefreshed != nil {
		t := *w.LastRefreshed
		out.LastRefreshed = &t
	}
	if w.SimulationConfig != nil {
		sc := *w.SimulationConfig
		if w.SimulationConfig.Defaults != nil {
			sc.Defaults = make(map[string]float64, len(w.SimulationConfig.Defaults))
			for k, v := range w.SimulationConfig.Defaults {
				sc.Defaults[k] = v
			}
		}
		out.SimulationConfig = &sc
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
