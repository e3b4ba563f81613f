package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseSignedDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"-12.50", -1250, true},
		{"+3", 300, true},
		{"(3.00)", -300, true},
		{"- 1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyUnmarshalCoercesToZero(t *testing.T) {
	var item BudgetItem
	raw := `{"originalBudget": 1250.5, "approvedCOBudget": null, "committedCost": "abc", "projectedCost": "", "category": "Roofing"}`
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.OriginalBudget.Cents != 125050 {
		t.Fatalf("expected 125050 cents, got %d", item.OriginalBudget.Cents)
	}
	if item.ApprovedCOBudget.Cents != 0 || item.CommittedCost.Cents != 0 || item.ProjectedCost.Cents != 0 {
		t.Fatalf("expected coerced zeros, got %+v", item)
	}
}

func TestMoneyUnmarshalOutOfRange(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{`1e17`, 0},
		{`-1e17`, 0},
		{`1e20`, 0},
		{`"5e18"`, 0},
		{`92233720368547758.07`, math.MaxInt64},
		{`92233720368547758.08`, 0},
		{`-92233720368547758.07`, -math.MaxInt64},
	}
	for _, tt := range tests {
		var m Money
		if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.raw, err)
		}
		if m.Cents != tt.want {
			t.Errorf("%s: cents = %d, want %d", tt.raw, m.Cents, tt.want)
		}
	}

	var e Expense
	raw := `{"projectId":"p","date":"2024-03-01","category":"Concrete","description":"Rebar","amount":1e17}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal expense: %v", err)
	}
	if err := e.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("Validate() = %v, want ErrInvalidAmount", err)
	}
	if got := NewMoney(1e300); got.Cents != 0 {
		t.Errorf("NewMoney(1e300) = %d, want 0", got.Cents)
	}
	if _, err := ParseDecimalToCents("92233720368547758.08"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ParseDecimalToCents past max: err = %v", err)
	}
}

func TestMoneyJSONNumericString(t *testing.T) {
	var co ChangeOrder
	if err := json.Unmarshal([]byte(`{"totalRequest": "-500.255"}`), &co); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if co.TotalRequest.Cents != -50026 {
		t.Fatalf("expected -50026, got %d", co.TotalRequest.Cents)
	}
	out, err := json.Marshal(co.TotalRequest)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "-500.26" {
		t.Fatalf("expected -500.26, got %s", out)
	}
}

func TestPercentCoercion(t *testing.T) {
	var p struct {
		Pct Percent `json:"pct"`
	}
	for _, raw := range []string{`{"pct": null}`, `{"pct": "NaN"}`, `{"pct": "ten"}`, `{}`} {
		p.Pct = 99
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if raw != `{}` && p.Pct != 0 {
			t.Fatalf("%s: expected 0, got %v", raw, p.Pct)
		}
	}
	if Percent(math.NaN()).Float() != 0 {
		t.Fatalf("expected NaN to read as 0")
	}
}

func TestNewMoney(t *testing.T) {
	if got := NewMoney(19.995).Cents; got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
	if got := NewMoney(math.Inf(1)).Cents; got != 0 {
		t.Fatalf("expected 0 for Inf, got %d", got)
	}
}
