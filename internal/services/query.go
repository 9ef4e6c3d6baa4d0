package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/helpers"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const (
	queryDateLayout  = "2006-01-02"
	monthLabelLayout = "Jan 2006"

	defaultMerchantLimit = 10
	categoryTrendTop     = 5
	uncategorized        = "Uncategorized"
	unknownMerchant      = "Unknown"
)

// allTimeStart stands in for an unbounded lower date.
var allTimeStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type transactionQueryStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

type accountQueryStore interface {
	List(ctx context.Context, uid, accountType string) ([]*models.Account, error)
}

// queryResolver turns a widget's QueryConfig into chart rows over the owner's
// transactions and accounts.
type queryResolver struct {
	txs      transactionQueryStore
	accounts accountQueryStore
	clockNow func() time.Time
}

func NewQueryResolver(txs transactionQueryStore, accounts accountQueryStore) *queryResolver {
	return &queryResolver{txs: txs, accounts: accounts, clockNow: time.Now}
}

// queryFilters is the typed view of QueryConfig.Filters.
type queryFilters struct {
	accountID   string
	categories  []string
	accountType string
	limit       int
}

func parseQueryFilters(raw map[string]any) queryFilters {
	f := queryFilters{}
	if s, ok := raw["account_id"].(string); ok {
		f.accountID = s
	}
	if s, ok := raw["account_type"].(string); ok {
		f.accountType = s
	}
	switch cats := raw["categories"].(type) {
	case []string:
		f.categories = cats
	case []any:
		for _, c := range cats {
			if s, ok := c.(string); ok && s != "" {
				f.categories = append(f.categories, s)
			}
		}
	}
	if n, ok := models.ToFloat(raw["limit"]); ok && n > 0 {
		f.limit = int(n)
	}
	return f
}

// Resolve runs the query. Unknown query types resolve to no rows.
func (r *queryResolver) Resolve(ctx context.Context, uid string, qc models.QueryConfig) ([]models.Row, error) {
	log := logger.FromContext(ctx)
	f := parseQueryFilters(qc.Filters)
	end := r.clockNow().UTC()
	start := rangeStart(qc.TimeRange, end)

	log.Debug("resolving widget query",
		"query_type", qc.QueryType,
		"time_range", qc.TimeRange,
		"from", start.Format(queryDateLayout),
	)

	switch qc.QueryType {
	case models.QueryAccountBalances:
		return r.accountBalances(ctx, uid, f)
	case models.QuerySpendingByCategory:
		return r.spendingByCategory(ctx, uid, f, start, end)
	case models.QueryMonthlyTrend:
		return r.monthlyTrend(ctx, uid, f, start, end)
	case models.QueryMonthlyIncomeExpenses:
		return r.monthlyIncomeExpenses(ctx, uid, f, start, end)
	case models.QueryTopMerchants:
		return r.topMerchants(ctx, uid, f, start, end)
	case models.QueryDailySpending:
		return r.dailySpending(ctx, uid, f, start, end)
	case models.QueryCategoryTrend:
		return r.categoryTrend(ctx, uid, f, start, end)
	default:
		log.Warn("unknown query type", "query_type", qc.QueryType)
		return []models.Row{}, nil
	}
}

// rangeStart resolves a time window ending at end. Unknown windows fall back
// to the last six months.
func rangeStart(tr models.TimeRange, end time.Time) time.Time {
	switch tr {
	case models.RangeLast7Days:
		return end.AddDate(0, 0, -7)
	case models.RangeLast30Days:
		return end.AddDate(0, 0, -30)
	case models.RangeThisMonth:
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	case models.RangeLast3Months:
		return end.AddDate(0, -3, 0)
	case models.RangeLast12Months:
		return end.AddDate(0, -12, 0)
	case models.RangeThisYear:
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	case models.RangeAllTime:
		return allTimeStart
	default:
		return end.AddDate(0, -6, 0)
	}
}

// monthsBetween lists the first day of every month from start's month to end.
func monthsBetween(start, end time.Time) []time.Time {
	var months []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

func monthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// scan streams the window's transactions, honouring the account and category
// filters. It reports false when an account filter names no account of the
// user, in which case there is nothing to chart.
func (r *queryResolver) scan(ctx context.Context, uid string, f queryFilters, categories []string, start, end time.Time, handle func(*models.Transaction)) (bool, error) {
	q := dto.TransactionQuery{
		Categories: categories,
		DateFrom:   helpers.Ptr(start.Format(queryDateLayout)),
		DateTo:     helpers.Ptr(end.Format(queryDateLayout)),
	}
	if f.accountID != "" {
		accounts, err := r.accounts.List(ctx, uid, "")
		if err != nil {
			return false, err
		}
		found := false
		for _, a := range accounts {
			if a.AccountID == f.accountID {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
		q.AccountID = helpers.Ptr(f.accountID)
	}

	err := r.txs.Query(ctx, uid, q, func(tx *models.Transaction) error {
		handle(tx)
		return nil
	})
	return err == nil, err
}

type total struct {
	key   string
	value float64
	count int
}

// sortedTotals orders by value descending, then key.
func sortedTotals(m map[string]*total) []*total {
	out := make([]*total, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value > out[j].value
		}
		return out[i].key < out[j].key
	})
	return out
}

func (r *queryResolver) accountBalances(ctx context.Context, uid string, f queryFilters) ([]models.Row, error) {
	accounts, err := r.accounts.List(ctx, uid, f.accountType)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, models.NewRow(
			models.F("name", a.Name),
			models.F("value", round2(a.Balance)),
			models.F("type", a.Type),
		))
	}
	return rows, nil
}

func (r *queryResolver) spendingByCategory(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	totals := map[string]*total{}
	ok, err := r.scan(ctx, uid, f, f.categories, start, end, func(tx *models.Transaction) {
		if !tx.IsSpending() {
			return
		}
		key := tx.Category
		if key == "" {
			key = uncategorized
		}
		if totals[key] == nil {
			totals[key] = &total{key: key}
		}
		totals[key].value += tx.Amount
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	rows := make([]models.Row, 0, len(totals))
	for _, t := range sortedTotals(totals) {
		rows = append(rows, models.NewRow(models.F("name", t.key), models.F("value", round2(t.value))))
	}
	return rows, nil
}

func (r *queryResolver) monthlyTrend(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	byMonth := map[string]float64{}
	ok, err := r.scan(ctx, uid, f, nil, start, end, func(tx *models.Transaction) {
		if tx.IsSpending() {
			byMonth[monthKey(tx.Date)] += tx.Amount
		}
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	var rows []models.Row
	for _, m := range monthsBetween(start, end) {
		rows = append(rows, models.NewRow(
			models.F("name", m.Format(monthLabelLayout)),
			models.F("value", round2(byMonth[m.Format("2006-01")])),
		))
	}
	return rows, nil
}

func (r *queryResolver) monthlyIncomeExpenses(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	income := map[string]float64{}
	expenses := map[string]float64{}
	ok, err := r.scan(ctx, uid, f, nil, start, end, func(tx *models.Transaction) {
		switch {
		case tx.IsSpending():
			expenses[monthKey(tx.Date)] += tx.Amount
		case tx.IsIncome():
			income[monthKey(tx.Date)] -= tx.Amount
		}
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	var rows []models.Row
	for _, m := range monthsBetween(start, end) {
		key := m.Format("2006-01")
		rows = append(rows, models.NewRow(
			models.F("name", m.Format(monthLabelLayout)),
			models.F("income", round2(income[key])),
			models.F("expenses", round2(expenses[key])),
		))
	}
	return rows, nil
}

func (r *queryResolver) topMerchants(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	totals := map[string]*total{}
	ok, err := r.scan(ctx, uid, f, nil, start, end, func(tx *models.Transaction) {
		if !tx.IsSpending() {
			return
		}
		key := tx.Name
		if key == "" {
			key = unknownMerchant
		}
		if totals[key] == nil {
			totals[key] = &total{key: key}
		}
		totals[key].value += tx.Amount
		totals[key].count++
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	limit := f.limit
	if limit == 0 {
		limit = defaultMerchantLimit
	}
	sorted := sortedTotals(totals)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	rows := make([]models.Row, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, models.NewRow(
			models.F("name", t.key),
			models.F("value", round2(t.value)),
			models.F("transactions", t.count),
		))
	}
	return rows, nil
}

func (r *queryResolver) dailySpending(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	byDay := map[string]float64{}
	ok, err := r.scan(ctx, uid, f, nil, start, end, func(tx *models.Transaction) {
		if tx.IsSpending() {
			byDay[tx.Date] += tx.Amount
		}
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	rows := make([]models.Row, 0, len(days))
	for _, d := range days {
		rows = append(rows, models.NewRow(models.F("name", d), models.F("value", round2(byDay[d]))))
	}
	return rows, nil
}

// categoryTrend charts one series per category by month. Without a category
// filter the five biggest spending categories of the window are used.
func (r *queryResolver) categoryTrend(ctx context.Context, uid string, f queryFilters, start, end time.Time) ([]models.Row, error) {
	totals := map[string]*total{}
	byMonth := map[string]map[string]float64{}
	ok, err := r.scan(ctx, uid, f, f.categories, start, end, func(tx *models.Transaction) {
		if !tx.IsSpending() || tx.Category == "" {
			return
		}
		if totals[tx.Category] == nil {
			totals[tx.Category] = &total{key: tx.Category}
		}
		totals[tx.Category].value += tx.Amount

		mk := monthKey(tx.Date)
		if byMonth[mk] == nil {
			byMonth[mk] = map[string]float64{}
		}
		byMonth[mk][tx.Category] += tx.Amount
	})
	if err != nil || !ok {
		return []models.Row{}, err
	}

	categories := f.categories
	if len(categories) == 0 {
		for i, t := range sortedTotals(totals) {
			if i == categoryTrendTop {
				break
			}
			categories = append(categories, t.key)
		}
	}

	var rows []models.Row
	for _, m := range monthsBetween(start, end) {
		row := models.NewRow(models.F("name", m.Format(monthLabelLayout)))
		spend := byMonth[m.Format("2006-01")]
		for _, c := range categories {
			row.Set(c, round2(spend[c]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
