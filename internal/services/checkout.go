package services

import (
	"strings"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// Supported payment methods.
const (
	PaymentJazzCash  = "JazzCash"
	PaymentEasypaisa = "Easypaisa"
	PaymentCard      = "Card"
)

// ValidatePassenger trims the lead passenger's details and checks their shape.
func ValidatePassenger(in models.Passenger) (models.Passenger, error) {
	p := models.Passenger{
		Name:  utils.NormalizeSpace(in.Name),
		CNIC:  strings.TrimSpace(in.CNIC),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.TrimSpace(in.Email),
	}
	switch {
	case p.Name == "":
		return p, passengerError("name", "name is required")
	case !utils.IsValidCNIC(p.CNIC):
		return p, passengerError("cnic", "cnic must look like 12345-1234567-1")
	case !utils.IsValidPhone(p.Phone):
		return p, passengerError("phone", "phone must look like 03xx-xxxxxxx")
	case !utils.IsValidEmail(p.Email):
		return p, passengerError("email", "email is not valid")
	}
	return p, nil
}

func passengerError(field, msg string) error {
	return domain.ValidationError{Field: "passenger." + field, Msg: msg, Err: domain.ErrInvalidPassengerDetails}
}

// ValidatePayment checks the method-specific shape and returns the masked summary.
// Raw card and wallet credentials never leave this function.
func ValidatePayment(in models.PaymentInput) (models.PaymentSummary, error) {
	method := strings.TrimSpace(in.Method)
	switch {
	case strings.EqualFold(method, PaymentCard):
		if !utils.IsValidCardNumber(in.CardNumber) {
			return models.PaymentSummary{}, paymentError("card_number", "enter a valid card number")
		}
		return models.PaymentSummary{Method: PaymentCard, Masked: utils.MaskCard(in.CardNumber)}, nil
	case strings.EqualFold(method, PaymentJazzCash), strings.EqualFold(method, PaymentEasypaisa):
		name := PaymentJazzCash
		if strings.EqualFold(method, PaymentEasypaisa) {
			name = PaymentEasypaisa
		}
		if !utils.IsValidWallet(in.WalletNo, in.WalletPIN) {
			return models.PaymentSummary{}, paymentError("wallet", "enter valid wallet details")
		}
		return models.PaymentSummary{Method: name, Masked: utils.MaskWallet(name, in.WalletNo)}, nil
	default:
		return models.PaymentSummary{}, paymentError("method", "unsupported payment method")
	}
}

func paymentError(field, msg string) error {
	return domain.ValidationError{Field: "payment." + field, Msg: msg, Err: domain.ErrInvalidPaymentDetails}
}
