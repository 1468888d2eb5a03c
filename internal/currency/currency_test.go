package currency

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToBGN(t *testing.T) {
	if got := ToBGN(decimal.NewFromInt(100)).String(); got != "195.583" {
		t.Fatalf("ToBGN(100) = %s, want 195.583", got)
	}
	if !ToBGN(decimal.Zero).IsZero() {
		t.Fatal("ToBGN(0) is not zero")
	}
}

func TestToEUR(t *testing.T) {
	if got := ToEUR(decimal.RequireFromString("195.583")).String(); got != "100" {
		t.Fatalf("ToEUR(195.583) = %s, want 100", got)
	}
	if got := ToEUR(decimal.NewFromInt(1000)).StringFixed(2); got != "511.29" {
		t.Fatalf("ToEUR(1000) = %s, want 511.29", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "1", "123.45", "933", "2111.64", "51130", "987654.321"} {
		x := decimal.RequireFromString(s)
		got := ToEUR(ToBGN(x))
		if diff, _ := got.Sub(x).Abs().Float64(); diff > 1e-9 {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}
}

func TestStorageConversions(t *testing.T) {
	eur := decimal.NewFromInt(50)
	if !FromStorage(eur, EUR).Equal(eur) {
		t.Error("FromStorage EUR changed the amount")
	}
	if !FromStorage(eur, BGN).Equal(ToBGN(eur)) {
		t.Error("FromStorage BGN did not convert")
	}
	if !ToStorage(ToBGN(eur), BGN).Equal(eur) {
		t.Error("ToStorage BGN did not convert back")
	}
	if !ToStorage(eur, EUR).Equal(eur) {
		t.Error("ToStorage EUR changed the amount")
	}
}

func TestParseAndToggle(t *testing.T) {
	tests := []struct {
		in   string
		want Currency
	}{
		{"bgn", BGN},
		{"EUR", EUR},
		{"", EUR},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := Parse("USD"); err == nil {
		t.Error("Parse(USD) succeeded")
	}

	if EUR.Toggle() != BGN || BGN.Toggle() != EUR {
		t.Error("Toggle does not swap EUR and BGN")
	}
}
