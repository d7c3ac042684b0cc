package services

import (
	"errors"
	"testing"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
)

func TestValidatePassenger(t *testing.T) {
	good := validPassenger()
	good.Name = "  Ali   Khan "
	p, err := ValidatePassenger(good)
	if err != nil {
		t.Fatalf("expected valid passenger, got %v", err)
	}
	if p.Name != "Ali Khan" {
		t.Fatalf("expected normalized name, got %q", p.Name)
	}

	cases := map[string]func(p *models.Passenger){
		"empty name":     func(p *models.Passenger) { p.Name = " " },
		"cnic no dashes": func(p *models.Passenger) { p.CNIC = "12345123456781" },
		"landline":       func(p *models.Passenger) { p.Phone = "021-1234567" },
		"email no dot":   func(p *models.Passenger) { p.Email = "ali@example" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validPassenger()
			mutate(&in)
			_, err := ValidatePassenger(in)
			if !errors.Is(err, domain.ErrInvalidPassengerDetails) || !domain.IsValidation(err) {
				t.Fatalf("expected invalid passenger details, got %v", err)
			}
		})
	}
}

func TestValidatePayment(t *testing.T) {
	ok := []struct {
		in   models.PaymentInput
		want models.PaymentSummary
	}{
		{
			in:   models.PaymentInput{Method: "Card", CardNumber: "4111-1111-1111-1111"},
			want: models.PaymentSummary{Method: "Card", Masked: "Card •••• 1111"},
		},
		{
			in:   models.PaymentInput{Method: "easypaisa", WalletNo: "03451234567", WalletPIN: "9876"},
			want: models.PaymentSummary{Method: "Easypaisa", Masked: "Easypaisa 0345•••••"},
		},
	}
	for _, tc := range ok {
		got, err := ValidatePayment(tc.in)
		if err != nil {
			t.Fatalf("expected valid payment %+v, got %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("expected %+v, got %+v", tc.want, got)
		}
	}

	bad := []models.PaymentInput{
		{Method: "Bitcoin"},
		{Method: "Card", CardNumber: "4111 1111"},
		{Method: "Card", CardNumber: "4111 1111 abcd 1111"},
		{Method: "JazzCash", WalletNo: "0300-1234567", WalletPIN: "12"},
		{Method: "JazzCash", WalletNo: "12345", WalletPIN: "1234"},
	}
	for _, in := range bad {
		if _, err := ValidatePayment(in); !errors.Is(err, domain.ErrInvalidPaymentDetails) {
			t.Fatalf("expected invalid payment for %+v, got %v", in, err)
		}
	}
}
