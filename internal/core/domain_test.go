package core

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	for _, valid := range []string{"this_month", "last_month", "all_time"} {
		p, err := ParsePeriod(valid)
		if err != nil {
			t.Errorf("ParsePeriod(%q) error: %v", valid, err)
		}
		if string(p) != valid {
			t.Errorf("ParsePeriod(%q) = %q", valid, p)
		}
	}

	for _, invalid := range []string{"", "THIS_MONTH", "this month", "year", "ytd"} {
		if _, err := ParsePeriod(invalid); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("ParsePeriod(%q) error = %v, want ErrInvalidPeriod", invalid, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-02")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if d.ISO() != "2025-06-02" {
		t.Errorf("ISO() = %q", d.ISO())
	}
	if d.Label() != "2 Jun" {
		t.Errorf("Label() = %q, want %q", d.Label(), "2 Jun")
	}
	if got := d.FirstOfMonth().ISO(); got != "2025-06-01" {
		t.Errorf("FirstOfMonth() = %q", got)
	}

	if _, err := ParseDate("02/06/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(slash format) error = %v, want ErrInvalidDate", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:        NewDate(2025, time.June, 2),
		Amount:      NewMoney(45075),
		Category:    "Food & Dining",
		Description: "Lunch at cafe",
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = NewMoney(-1) }, wantErr: ErrInvalidAmount},
		{name: "blank description", mutate: func(tx *Transaction) { tx.Description = "   " }, wantErr: ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetCategoryInfo(t *testing.T) {
	// Every member of the fixed set resolves to itself, not the catch-all.
	for _, c := range Categories {
		got := GetCategoryInfo(c.Value)
		if got.Value != c.Value {
			t.Errorf("GetCategoryInfo(%q) resolved to %q", c.Value, got.Value)
		}
		if !KnownCategory(c.Value) {
			t.Errorf("KnownCategory(%q) = false", c.Value)
		}
	}

	food := GetCategoryInfo("Food & Dining")
	if food.Label != "Food & Dining" || food.Color != "#f59e0b" {
		t.Errorf("Food & Dining info = %+v", food)
	}

	// Unknown values resolve to the catch-all, never an error.
	unknown := GetCategoryInfo("crypto")
	if unknown.Value != CategoryOther {
		t.Errorf("unknown category resolved to %q, want %q", unknown.Value, CategoryOther)
	}

	if !KnownCategory("Travel") || KnownCategory("crypto") {
		t.Error("KnownCategory misclassified values")
	}
}
