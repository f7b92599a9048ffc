package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"300", 30000, false},
		{"0", 0, false},
		{"-3", -300, false},
		{"-0.5", -50, false},
		{"+7.25", 725, false},
		{"92233720368547757.99", 9223372036854775799, false},
		{"", 0, true},
		{"abc", 0, true},
		{"92233720368547758.99", 0, true}, // iv*100+cents would wrap int64
		{"9223372036854775808", 0, true},
		{"1.2.3", 0, true},
		{"12e3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		cents int64
		n     int
		want  int64
	}{
		{30000, 2, 15000},
		{40000, 2, 20000},
		{10000, 3, 3334},
		{1, 2, 1},
		{0, 4, 0},
		{30000, 0, 0},
		{30000, -1, 0},
		{-10000, 3, -3333}, // toward positive infinity
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.cents, tt.n); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.cents, tt.n, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{`300`, 30000},
		{`12.34`, 1234},
		{`"12,34"`, 1234},
		{`"150.00"`, 15000},
		{`-5`, -500},
	}
	for _, tt := range tests {
		var m Money
		if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if m.Cents != tt.want {
			t.Errorf("Unmarshal(%s) = %d cents, want %d", tt.in, m.Cents, tt.want)
		}
	}

	b, err := json.Marshal(Money{Cents: 15000})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(b) != "150.00" {
		t.Errorf("Marshal = %s, want 150.00", b)
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{15000, "150.00"},
		{5, "0.05"},
		{-350, "-3.50"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
