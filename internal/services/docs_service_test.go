package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"railbook/internal/domain/models"
)

func TestDocsServiceGenerate(t *testing.T) {
	loader := func(_ context.Context, ref string) (models.Booking, error) {
		return models.Booking{
			Reference: ref,
			TrainID:   "PKR-1",
			TrainName: "Green Line Express",
			From:      "Karachi",
			To:        "Islamabad",
			Date:      time.Now().Format("2006-01-02"),
			Class:     "Economy",
			Seats:     []int{5, 12},
			Fare:      models.Fare{Base: 3600, Tax: 180, Total: 3780},
			Amount:    3780,
			Passenger: models.Passenger{Name: "Ali Khan", Phone: "0300-1234567"},
			Payment:   models.PaymentSummary{Method: "Card", Masked: "Card •••• 1111"},
			CreatedAt: time.Now().UTC(),
			Status:    models.BookingConfirmed,
		}, nil
	}

	svc := DocsService{Loader: loader}

	pdf, filename, err := svc.GenerateETicket(context.Background(), "req-1", "PNR-ABC1234")
	if err != nil {
		t.Fatalf("GenerateETicket returned error: %v", err)
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("GenerateETicket returned invalid data")
	}
	if filename != "ETICKET_PNR-ABC1234_Ali_Khan.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestTranslitMask(t *testing.T) {
	if got := translit("Card •••• 1111"); strings.Contains(got, "•") {
		t.Fatalf("expected bullets replaced, got %q", got)
	}
}
