package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"railbook/internal/domain/models"
	"railbook/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the printable e-ticket for a booking.
type DocsService struct {
	Bookings *BookingService
	Loader   func(ctx context.Context, ref string) (models.Booking, error)
}

// GenerateETicket returns the PDF bytes and a download filename.
func (s DocsService) GenerateETicket(ctx context.Context, requestID, ref string) ([]byte, string, error) {
	b, err := s.load(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(requestID, "docs", "generate_eticket", "pnr="+b.Reference)
	return buildETicketPDF(b)
}

func (s DocsService) load(ctx context.Context, ref string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ref)
	}
	return s.Bookings.Get(ctx, ref)
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.Reference, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR         : %s", safe(b.Reference, "-")),
		fmt.Sprintf("Status      : %s", safe(string(b.Status), "-")),
		fmt.Sprintf("Train       : %s (%s)", safe(b.TrainName, "-"), safe(b.TrainID, "-")),
		fmt.Sprintf("Route       : %s -> %s", safe(b.From, "-"), safe(b.To, "-")),
		fmt.Sprintf("Date        : %s", safe(b.Date, "-")),
		fmt.Sprintf("Class       : %s", safe(b.Class, "-")),
		fmt.Sprintf("Seats       : %s", safe(seatList(b.Seats), "-")),
		fmt.Sprintf("Passenger   : %s", safe(b.Passenger.Name, "-")),
		fmt.Sprintf("Phone       : %s", safe(b.Passenger.Phone, "-")),
		fmt.Sprintf("Fare        : %s + tax %s", utils.FormatPKR(b.Fare.Base), utils.FormatPKR(b.Fare.Tax)),
		fmt.Sprintf("Amount      : %s", utils.FormatPKR(b.Amount)),
		fmt.Sprintf("Payment     : %s", safe(b.Payment.Masked, "-")),
		fmt.Sprintf("Booked at   : %s", b.CreatedAt.Format("2006-01-02 15:04 MST")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, translit(s))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "Please carry a valid CNIC matching the passenger name. Show this ticket at boarding."
	if b.Status == models.BookingCancelled {
		note = "This booking has been cancelled and is not valid for travel."
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", utils.SafeFilenamePart(b.Reference), utils.SafeFilenamePart(b.Passenger.Name))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func seatList(seats []int) string {
	parts := make([]string, 0, len(seats))
	for _, n := range seats {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}

// translit replaces the mask bullet, which the core PDF fonts cannot draw.
func translit(s string) string {
	return strings.ReplaceAll(s, "•", "*")
}
