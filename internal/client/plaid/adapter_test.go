package plaidclient

import (
	"testing"

	"github.com/plaid/plaid-go/v24/plaid"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
)

func TestCategoryName(t *testing.T) {
	tests := map[string]string{
		"FOOD_AND_DRINK":     "Food And Drink",
		"RENT_AND_UTILITIES": "Rent And Utilities",
		"INCOME":             "Income",
		"":                   "",
	}
	for in, want := range tests {
		if got := categoryName(in); got != want {
			t.Fatalf("%q: got %q, want %q", in, got, want)
		}
	}
}

func TestToPlaidEnv(t *testing.T) {
	if toPlaidEnv(dto.PlaidSandbox) != plaid.Sandbox {
		t.Fatalf("sandbox not mapped")
	}
	if toPlaidEnv("anything-else") != plaid.Production {
		t.Fatalf("unknown environments should map to production")
	}
}
