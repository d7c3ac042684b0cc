package utils

import (
	"regexp"
	"strings"
)

var (
	cnicRe  = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)
	phoneRe = regexp.MustCompile(`^(03)\d{2}-?\d{7}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitRe = regexp.MustCompile(`^\d+$`)
)

// MinCardDigits is the shortest accepted card number after stripping separators.
const MinCardDigits = 12

// MinWalletPIN is the shortest accepted wallet PIN.
const MinWalletPIN = 4

// IsValidCNIC matches the national identity format 12345-1234567-1.
func IsValidCNIC(s string) bool {
	return cnicRe.MatchString(s)
}

// IsValidPhone matches mobile numbers like 0300-1234567 or 03001234567.
func IsValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// IsValidEmail is a structural check only.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidCardNumber accepts at least MinCardDigits digits once spaces and dashes are removed.
func IsValidCardNumber(s string) bool {
	no := StripSeparators(s)
	return len(no) >= MinCardDigits && digitRe.MatchString(no)
}

// IsValidWallet checks the wallet number against the phone format and the PIN length.
func IsValidWallet(number, pin string) bool {
	return IsValidPhone(strings.TrimSpace(number)) && len(pin) >= MinWalletPIN
}

// MaskCard keeps only the last four digits.
func MaskCard(s string) string {
	no := StripSeparators(s)
	if len(no) > 4 {
		no = no[len(no)-4:]
	}
	return "Card •••• " + no
}

// MaskWallet keeps the first four characters of the wallet number.
func MaskWallet(method, number string) string {
	number = strings.TrimSpace(number)
	if len(number) > 4 {
		number = number[:4]
	}
	return method + " " + number + "•••••"
}
