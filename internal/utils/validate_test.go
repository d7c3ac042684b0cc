package utils

import "testing"

func TestIsValidCNIC(t *testing.T) {
	cases := map[string]bool{
		"12345-1234567-1":  true,
		"12345123456781":   false,
		"1234-1234567-1":   false,
		"12345-1234567-12": false,
		"":                 false,
	}
	for in, want := range cases {
		if got := IsValidCNIC(in); got != want {
			t.Fatalf("IsValidCNIC(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	cases := map[string]bool{
		"0300-1234567":  true,
		"03001234567":   true,
		"0400-1234567":  false,
		"0300-123456":   false,
		"+923001234567": false,
	}
	for in, want := range cases {
		if got := IsValidPhone(in); got != want {
			t.Fatalf("IsValidPhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"ali@example.pk":   true,
		"a@b.c":            true,
		"ali@example":      false,
		"ali example@x.pk": false,
		"@example.pk":      false,
	}
	for in, want := range cases {
		if got := IsValidEmail(in); got != want {
			t.Fatalf("IsValidEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPaymentShapes(t *testing.T) {
	if !IsValidCardNumber("4111 1111 1111 1111") {
		t.Fatalf("expected spaced card number to be valid")
	}
	if !IsValidCardNumber("4111-1111-1111") {
		t.Fatalf("expected 12 digit card number to be valid")
	}
	if IsValidCardNumber("4111 1111 111") {
		t.Fatalf("expected 11 digit card number to be rejected")
	}
	if IsValidCardNumber("4111 1111 abcd") {
		t.Fatalf("expected non digit card number to be rejected")
	}
	if !IsValidWallet("0300-1234567", "1234") {
		t.Fatalf("expected wallet to be valid")
	}
	if IsValidWallet("0300-1234567", "123") {
		t.Fatalf("expected short pin to be rejected")
	}
	if IsValidWallet("12345", "1234") {
		t.Fatalf("expected bad wallet number to be rejected")
	}
}

func TestMasking(t *testing.T) {
	if got := MaskCard("4111 1111 1111 1234"); got != "Card •••• 1234" {
		t.Fatalf("unexpected card mask %q", got)
	}
	if got := MaskWallet("JazzCash", "0300-1234567"); got != "JazzCash 0300•••••" {
		t.Fatalf("unexpected wallet mask %q", got)
	}
}

func TestFormatPKR(t *testing.T) {
	cases := map[int64]string{
		0:       "PKR 0",
		180:     "PKR 180",
		3780:    "PKR 3,780",
		1234567: "PKR 1,234,567",
	}
	for in, want := range cases {
		if got := FormatPKR(in); got != want {
			t.Fatalf("FormatPKR(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	if got, ok := NormalizeDate(" 2025-03-09 "); !ok || got != "2025-03-09" {
		t.Fatalf("unexpected %q %v", got, ok)
	}
	if _, ok := NormalizeDate("2025-3-9"); ok {
		t.Fatalf("expected non padded date to be rejected")
	}
	if _, ok := NormalizeDate("2025-02-30"); ok {
		t.Fatalf("expected impossible date to be rejected")
	}
}
