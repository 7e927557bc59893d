package order

import (
	"errors"
	"net/url"
	"testing"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
)

func TestFormatMessage(t *testing.T) {
	lines := []Line{
		{MedicationName: "Paracetamol", Dosage: "500mg", Quantity: 15},
		{MedicationName: "Amoxicillin + Clavulanate", Dosage: "500mg + 125mg", Quantity: 21},
	}
	want := "Hello, I want to order the following medicines:\n\n" +
		"• Paracetamol 500mg - Qty: 15\n" +
		"• Amoxicillin + Clavulanate 500mg + 125mg - Qty: 21\n"

	if got := FormatMessage(lines); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if got := FormatMessage(nil); got != messageHeader {
		t.Errorf("empty order = %q", got)
	}
}

func TestLinesFrom(t *testing.T) {
	resp := &models.MedicationResponse{Medications: []models.Medication{
		{MedicationName: "Sertraline", Dosage: "50mg", Quantity: 30, Instructions: models.Instructions{How: "With water"}},
	}}
	lines := LinesFrom(resp)
	if len(lines) != 1 || lines[0] != (Line{MedicationName: "Sertraline", Dosage: "50mg", Quantity: 30}) {
		t.Errorf("got %+v", lines)
	}
	if got := LinesFrom(nil); got == nil || len(got) != 0 {
		t.Errorf("nil response should give empty lines, got %#v", got)
	}
}

func TestWhatsAppURL(t *testing.T) {
	got, err := WhatsAppURL("Qty: 2 & more\n", "+91 98765-43210")
	if err != nil {
		t.Fatalf("WhatsAppURL: %v", err)
	}
	want := "https://wa.me/919876543210?text=Qty%3A%202%20%26%20more%0A"
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Query().Get("text") != "Qty: 2 & more\n" {
		t.Errorf("round trip text = %q", u.Query().Get("text"))
	}
}

func TestWhatsAppURLRejectsPhoneWithoutDigits(t *testing.T) {
	if _, err := WhatsAppURL("hi", "call me"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestSendURLCustomMessage(t *testing.T) {
	lines := []Line{{MedicationName: "Advil", Dosage: "200mg", Quantity: 6}}

	custom, _ := SendURL(lines, "123", "Please call me")
	if custom != "https://wa.me/123?text=Please%20call%20me" {
		t.Errorf("custom = %s", custom)
	}

	formatted, _ := SendURL(lines, "123", "")
	u, _ := url.Parse(formatted)
	if u.Query().Get("text") != FormatMessage(lines) {
		t.Errorf("default message not used: %q", u.Query().Get("text"))
	}
}
