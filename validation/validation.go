package validation

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "out_of_range"
	}
}

// Email accepts an empty value; anything else must parse as a bare address.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v[field] = "invalid_email"
	}
}

// Digits strips every non-digit rune, so "123.456.789-09" becomes "12345678909".
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalID checks an 11-digit CPF (both check digits). Empty values are accepted.
func NationalID(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !validCPF(Digits(value)) {
		v[field] = "invalid_national_id"
	}
}

// Phone accepts empty values, 10-digit landlines and 11-digit mobiles.
func Phone(field, value string, v Violations) {
	if value == "" {
		return
	}
	if n := len(Digits(value)); n != 10 && n != 11 {
		v[field] = "invalid_phone"
	}
}

// PostalCode accepts empty values and 8-digit CEPs.
func PostalCode(field, value string, v Violations) {
	if value == "" {
		return
	}
	if len(Digits(value)) != 8 {
		v[field] = "invalid_postal_code"
	}
}

func validCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}
	for n := 9; n <= 10; n++ {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cpf[i]-'0') * (n + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(cpf[n]-'0') {
			return false
		}
	}
	return true
}
