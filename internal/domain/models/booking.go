package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Fare is a quote for a seat count in one class.
type Fare struct {
	Base  int64 `json:"base"`
	Tax   int64 `json:"tax"`
	Total int64 `json:"total"`
}

// Passenger is the lead passenger snapshot captured at payment.
type Passenger struct {
	Name  string `json:"name"`
	CNIC  string `json:"cnic"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// PaymentInput carries the raw payment form. It is never persisted.
type PaymentInput struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVV    string `json:"card_cvv,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`
	WalletNo   string `json:"wallet_number,omitempty"`
	WalletPIN  string `json:"wallet_pin,omitempty"`
}

// PaymentSummary is what the ledger keeps about a payment.
type PaymentSummary struct {
	Method string `json:"method"`
	Masked string `json:"masked"`
}

// Booking is a committed reservation. Only Status and CancelledAt ever change.
type Booking struct {
	Reference   string         `json:"pnr"`
	Owner       string         `json:"userEmail"`
	TrainID     string         `json:"trainId"`
	TrainName   string         `json:"trainName"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Date        string         `json:"date"`
	Class       string         `json:"cls"`
	Seats       []int          `json:"seats"`
	Fare        Fare           `json:"fare"`
	Amount      int64          `json:"amount"`
	Passenger   Passenger      `json:"passenger"`
	Payment     PaymentSummary `json:"payment"`
	CreatedAt   time.Time      `json:"bookedAt"`
	Status      BookingStatus  `json:"status"`
	CancelledAt *time.Time     `json:"cancelledAt,omitempty"`
}

func (b Booking) Partition() PartitionKey {
	return PartitionKey{TrainID: b.TrainID, Date: b.Date, Class: b.Class}
}
