// order.go - Pharmacy order lines and WhatsApp deep links

package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
)

const messageHeader = "Hello, I want to order the following medicines:\n\n"

// ErrInvalidPhone is returned when a phone number has no digits.
var ErrInvalidPhone = errors.New("phone number must contain digits")

// Line is one orderable medication as shown in the prescription table.
type Line struct {
	MedicationName string `json:"Medication Name" bson:"medication_name"`
	Dosage         string `json:"Dosage" bson:"dosage"`
	Quantity       int    `json:"Quantity" bson:"quantity"`
}

// LinesFrom turns reconciled medications into order lines.
func LinesFrom(resp *models.MedicationResponse) []Line {
	if resp == nil {
		return []Line{}
	}
	lines := make([]Line, 0, len(resp.Medications))
	for _, med := range resp.Medications {
		lines = append(lines, Line{
			MedicationName: med.MedicationName,
			Dosage:         med.Dosage,
			Quantity:       med.Quantity,
		})
	}
	return lines
}

// FormatMessage renders the order text sent to the pharmacy.
func FormatMessage(lines []Line) string {
	var b strings.Builder
	b.WriteString(messageHeader)
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s %s - Qty: %d\n", l.MedicationName, l.Dosage, l.Quantity)
	}
	return b.String()
}

// NormalizePhone keeps only the digits of phone, as wa.me expects.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidPhone
	}
	return b.String(), nil
}

// WhatsAppURL builds a wa.me link that opens a chat with message prefilled.
func WhatsAppURL(message, phone string) (string, error) {
	digits, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	// wa.me does not decode '+' as a space
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text, nil
}

// SendURL builds the WhatsApp link for an order. A non-empty custom message
// replaces the formatted one.
func SendURL(lines []Line, phone, customMessage string) (string, error) {
	message := customMessage
	if message == "" {
		message = FormatMessage(lines)
	}
	return WhatsAppURL(message, phone)
}
