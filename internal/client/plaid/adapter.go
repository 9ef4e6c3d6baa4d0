// Package plaidclient adapts the Plaid SDK to the bank sync service.
package plaidclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/plaid/plaid-go/v24/plaid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

const (
	clientName = "Finance Widgets"
	syncCount  = 500
)

var categoryCaser = cases.Title(language.English)

type Adapter struct {
	client *plaid.APIClient
}

func NewAdapter(clientID, secret string, env dto.PlaidEnvironment) *Adapter {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(toPlaidEnv(env))

	return &Adapter{
		client: plaid.NewAPIClient(cfg),
	}
}

func (a *Adapter) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		plaid.LinkTokenCreateRequestUser{ClientUserId: uid},
	)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, httpResp, err := a.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", plaidError(httpResp, err)
	}
	return resp.GetLinkToken(), nil
}

func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, httpResp, err := a.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", plaidError(httpResp, err)
	}
	return resp.GetItemId(), resp.GetAccessToken(), nil
}

// SyncTransactions fetches one page of changes after cursor. Added and
// modified transactions both come back as upserts.
func (a *Adapter) SyncTransactions(ctx context.Context, bankID, accessToken string, cursor *string) (dto.SyncPage, error) {
	req := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != nil {
		req.SetCursor(*cursor)
	}
	req.SetCount(syncCount)
	opts := plaid.NewTransactionsSyncRequestOptions()
	opts.SetIncludePersonalFinanceCategory(true)
	req.SetOptions(*opts)

	var page dto.SyncPage
	resp, httpResp, err := a.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*req).Execute()
	if err != nil {
		return page, plaidError(httpResp, err)
	}

	txs := make([]models.Transaction, 0, len(resp.GetAdded())+len(resp.GetModified()))
	for _, t := range resp.GetAdded() {
		txs = append(txs, toTransaction(bankID, t))
	}
	for _, t := range resp.GetModified() {
		txs = append(txs, toTransaction(bankID, t))
	}
	for _, r := range resp.GetRemoved() {
		page.RemovedIDs = append(page.RemovedIDs, r.GetTransactionId())
	}

	page.Transactions = txs
	page.Cursor = resp.GetNextCursor()
	page.HasMore = resp.GetHasMore()
	return page, nil
}

// Accounts returns the item's accounts with their current balances.
func (a *Adapter) Accounts(ctx context.Context, bankID, accessToken string) ([]models.Account, error) {
	req := plaid.NewAccountsGetRequest(accessToken)
	resp, httpResp, err := a.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, plaidError(httpResp, err)
	}

	accounts := make([]models.Account, 0, len(resp.GetAccounts()))
	for _, acct := range resp.GetAccounts() {
		bal := acct.GetBalances()
		name := acct.GetOfficialName()
		if name == "" {
			name = acct.GetName()
		}
		accounts = append(accounts, models.Account{
			AccountID: acct.GetAccountId(),
			BankID:    bankID,
			Name:      name,
			Type:      accountType(acct),
			Balance:   bal.GetCurrent(),
			Currency:  bal.GetIsoCurrencyCode(),
		})
	}
	return accounts, nil
}

func toTransaction(bankID string, t plaid.Transaction) models.Transaction {
	name := t.GetMerchantName()
	if name == "" {
		name = t.GetName()
	}
	pfc := t.GetPersonalFinanceCategory()
	return models.Transaction{
		TransactionID: t.GetTransactionId(),
		AccountID:     t.GetAccountId(),
		BankID:        bankID,
		Name:          name,
		Amount:        t.GetAmount(),
		Currency:      t.GetIsoCurrencyCode(),
		Date:          t.GetDate(),
		Category:      categoryName(pfc.GetPrimary()),
		Pending:       t.GetPending(),
	}
}

// categoryName turns a Plaid category code into a label:
// FOOD_AND_DRINK → Food And Drink.
func categoryName(primary string) string {
	if primary == "" {
		return ""
	}
	return categoryCaser.String(strings.ToLower(strings.ReplaceAll(primary, "_", " ")))
}

// accountType prefers the subtype (checking, savings, credit card) and falls
// back to the broad type.
func accountType(acct plaid.AccountBase) string {
	if sub := acct.GetSubtype(); sub != "" {
		return string(sub)
	}
	return string(acct.GetType())
}

func plaidError(resp *http.Response, err error) error {
	code := 0
	if resp != nil {
		code = resp.StatusCode
	}
	reason := ""
	if perr, convErr := plaid.ToPlaidError(err); convErr == nil {
		reason = perr.GetErrorMessage()
	}
	return errs.NewExternalServiceError("plaid", code, reason, err)
}

func toPlaidEnv(env dto.PlaidEnvironment) plaid.Environment {
	switch env {
	case dto.PlaidSandbox:
		return plaid.Sandbox
	case dto.PlaidDevelopment:
		return plaid.Development
	default:
		return plaid.Production
	}
}
