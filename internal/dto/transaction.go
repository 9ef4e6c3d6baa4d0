package dto

// TransactionQuery narrows a transaction scan. Nil or empty fields do not filter.
type TransactionQuery struct {
	AccountID  *string
	Categories []string
	DateFrom   *string // YYYY-MM-DD, inclusive
	DateTo     *string // YYYY-MM-DD, inclusive
	OrderBy    string
	Desc       bool
	Limit      int
}
