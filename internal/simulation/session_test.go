package simulation

import (
	"errors"
	"testing"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

func TestSessionSeedsFromDefaults(t *testing.T) {
	s, err := NewSession(models.SimulationConfig{
		SimulationType: models.SimLoanRepayment,
		Defaults:       map[string]float64{"interestRate": 5, "principal": 5e9, "bogus": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := s.Params()
	if p["interestRate"] != 5 {
		t.Fatalf("expected seeded rate 5, got %v", p["interestRate"])
	}
	if p["principal"] != 1000000 {
		t.Fatalf("expected principal clamped to max, got %v", p["principal"])
	}
	if p["termYears"] != 30 {
		t.Fatalf("expected built-in default term, got %v", p["termYears"])
	}
	if _, ok := p["bogus"]; ok {
		t.Fatalf("unknown default key leaked into params")
	}
}

func TestSessionSetRecomputes(t *testing.T) {
	s, _ := NewSession(models.SimulationConfig{SimulationType: models.SimLoanRepayment})
	before := s.Result()

	after, err := s.Set("extraPayment", 510)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Params()["extraPayment"] != 500 {
		t.Fatalf("expected snapped value 500, got %v", s.Params()["extraPayment"])
	}
	b, _ := before.Metric("interestSaved")
	a, _ := after.Metric("interestSaved")
	if a.Value <= b.Value {
		t.Fatalf("expected interest saved to grow: %v -> %v", b.Value, a.Value)
	}
	if got, _ := s.Result().Metric("interestSaved"); got.Value != a.Value {
		t.Fatalf("Result disagrees with Set")
	}
}

func TestSessionUnknownKey(t *testing.T) {
	s, _ := NewSession(models.SimulationConfig{SimulationType: models.SimEmergencyFund})
	_, err := s.Set("nope", 1)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSessionDoesNotMutateConfig(t *testing.T) {
	cfg := models.SimulationConfig{
		SimulationType: models.SimSavingsProjector,
		Defaults:       map[string]float64{"annualReturn": 5},
	}
	s, _ := NewSession(cfg)
	s.Set("annualReturn", 9)
	if cfg.Defaults["annualReturn"] != 5 {
		t.Fatalf("session wrote back to widget defaults")
	}
}

func TestNewSessionUnknownType(t *testing.T) {
	if _, err := NewSession(models.SimulationConfig{SimulationType: "nope"}); err == nil {
		t.Fatalf("expected error")
	}
}
