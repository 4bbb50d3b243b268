package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseShoeType(t *testing.T) {
	cases := map[string]ShoeType{
		"MALE":     ShoeTypeMale,
		"male":     ShoeTypeMale,
		" Female ": ShoeTypeFemale,
		"fEmAlE":   ShoeTypeFemale,
	}
	for in, want := range cases {
		got, err := ParseShoeType(in)
		if err != nil {
			t.Fatalf("ParseShoeType(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Errorf("ParseShoeType(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "HOMME", "kids", "MALES"} {
		if _, err := ParseShoeType(in); !errors.Is(err, ErrInvalidShoeType) {
			t.Errorf("ParseShoeType(%q): expected ErrInvalidShoeType, got %v", in, err)
		}
	}
}

func TestShoeTypeLabel(t *testing.T) {
	if got := ShoeTypeFemale.Label(); got != "Female" {
		t.Errorf("expected Female, got %q", got)
	}
	if got := ShoeTypeMale.Label(); got != "Male" {
		t.Errorf("expected Male, got %q", got)
	}
}

func TestNewService(t *testing.T) {
	s, err := NewService("s1", "Talon aiguille", decimal.RequireFromString("12.00"), ShoeTypeFemale, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Active {
		t.Error("new services must be active")
	}
	if !s.Selectable(ShoeTypeFemale) || s.Selectable(ShoeTypeMale) {
		t.Error("selectable must follow shoe type")
	}

	if _, err := NewService("s2", "", decimal.Zero, ShoeTypeMale, ""); !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
	if _, err := NewService("s3", "x", decimal.NewFromInt(-1), ShoeTypeMale, ""); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := NewService("s4", "x", decimal.Zero, "KIDS", ""); !errors.Is(err, ErrInvalidShoeType) {
		t.Errorf("expected ErrInvalidShoeType, got %v", err)
	}
}
