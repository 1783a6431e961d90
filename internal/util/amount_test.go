package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount_BareNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"500", "500"},
		{"500.50", "500.5"},
		{"0", "0"},
		{"-25", "-25"},
		{"  42  ", "42"},
	}

	for _, tt := range tests {
		result, err := ParseAmount(tt.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q): expected no error, got %v", tt.input, err)
		}
		if !result.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("ParseAmount(%q): expected %s, got %s", tt.input, tt.expected, result.String())
		}
	}
}

func TestParseAmount_Arithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"100+50", "150"},
		{"100 + 50", "150"},
		{"200-75.25", "124.75"},
		{"10*3", "30"},
		{"500*0.8", "400"},
		{"100/4", "25"},
		{"100/3", "33.33"},
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"10-(4-2)", "8"},
		{"-5+10", "5"},
		{"(1+2)*(3+4)", "21"},
	}

	for _, tt := range tests {
		result, err := ParseAmount(tt.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q): expected no error, got %v", tt.input, err)
		}
		if !result.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("ParseAmount(%q): expected %s, got %s", tt.input, tt.expected, result.String())
		}
	}
}

func TestParseAmount_RoundsToTwoPlaces(t *testing.T) {
	result, err := ParseAmount("10/3")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.String() != "3.33" {
		t.Errorf("Expected 3.33, got %s", result.String())
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"abc",
		"10+abc",
		"1++2",
		"5*/3",
		"(1+2",
		"1+2)",
		"()",
		"10+",
		"$100",
		"1,000",
	}

	for _, input := range inputs {
		_, err := ParseAmount(input)
		if err == nil {
			t.Errorf("ParseAmount(%q): expected error, got none", input)
		}
	}
}

func TestParseAmount_DivideByZero(t *testing.T) {
	_, err := ParseAmount("10/0")
	if err == nil {
		t.Fatal("Expected error for division by zero, got none")
	}

	_, err = ParseAmount("10/(5-5)")
	if err == nil {
		t.Fatal("Expected error for division by zero subexpression, got none")
	}
}
