package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
)

func TestDecodeMedicationResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		wantLen int
		wantQty int
	}{
		{
			name:    "valid",
			text:    `{"medications":[{"medication_name":"Amoxicillin","dosage":"500mg","quantity":21,"instructions":{"how":"With water","how_much":"1 capsule","when":"Three times daily"}}]}`,
			wantLen: 1,
		},
		{
			name:    "code fenced",
			text:    "```json\n{\"medications\":[]}\n```",
			wantLen: 0,
		},
		{
			name:    "literal newline inside string",
			text:    "{\"medications\":[{\"medication_name\":\"Ibuprofen\",\"dosage\":\"400mg\",\"quantity\":10,\"instructions\":{\"how\":\"After food\nwith water\",\"how_much\":\"1 tablet\",\"when\":\"As needed\"}}]}",
			wantLen: 1,
		},
		{
			name:    "whole float quantity",
			text:    `{"medications":[{"medication_name":"Paracetamol","dosage":"500mg","quantity":15.0,"instructions":{"how":"With water","how_much":"1 tablet","when":"Every 6 hours"}}]}`,
			wantLen: 1,
			wantQty: 15,
		},
		{
			name:    "exponent quantity",
			text:    `{"medications":[{"medication_name":"Paracetamol","dosage":"500mg","quantity":2e1,"instructions":{"how":"a","how_much":"b","when":"c"}}]}`,
			wantLen: 1,
			wantQty: 20,
		},
		{
			name:    "quantity as string",
			text:    `{"medications":[{"medication_name":"X","dosage":"1mg","quantity":"30 tablets","instructions":{"how":"a","how_much":"b","when":"c"}}]}`,
			wantErr: true,
		},
		{
			name:    "fractional quantity",
			text:    `{"medications":[{"medication_name":"X","dosage":"1mg","quantity":2.5,"instructions":{"how":"a","how_much":"b","when":"c"}}]}`,
			wantErr: true,
		},
		{
			name:    "missing instructions field",
			text:    `{"medications":[{"medication_name":"X","dosage":"1mg","quantity":3,"instructions":{"how":"a","when":"c"}}]}`,
			wantErr: true,
		},
		{
			name:    "missing medications",
			text:    `{}`,
			wantErr: true,
		},
		{
			name:    "not json",
			text:    "I could not read this prescription.",
			wantErr: true,
		},
		{
			name:    "empty",
			text:    "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStructured[models.MedicationResponse](tt.text, MedicationResponseSchema(), "MedicationResponse")
			if tt.wantErr {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected *SchemaError, got %v", err)
				}
				if got != nil {
					t.Fatal("parsed value must be nil on schema failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Medications) != tt.wantLen {
				t.Errorf("got %d medications, want %d", len(got.Medications), tt.wantLen)
			}
			if tt.wantQty != 0 && got.Medications[0].Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", got.Medications[0].Quantity, tt.wantQty)
			}
		})
	}
}

func TestDecodeSpellCheckResult(t *testing.T) {
	valid := `{"input_name":"Advilv","corrected_name":"Advil","generic_name":["Ibuprofen"],"brand_names":["Advil","Motrin"],"is_correct":false,"is_generic":false,"notes":"typo"}`
	got, err := decodeStructured[models.SpellCheckResult](valid, SpellCheckResultSchema(), "SpellCheckResult")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CorrectedName != "Advil" || got.IsCorrect {
		t.Errorf("unexpected result %+v", got)
	}

	stringGeneric := `{"input_name":"A","corrected_name":"A","generic_name":"N/A","brand_names":[],"is_correct":true,"is_generic":true,"notes":""}`
	if _, err := decodeStructured[models.SpellCheckResult](stringGeneric, SpellCheckResultSchema(), "SpellCheckResult"); err == nil {
		t.Error("generic_name as string must fail schema validation")
	}
}

func TestGenerateStructuredRequiresSchema(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, Request) (*Response, error) {
		t.Fatal("generator must not be called without a schema")
		return nil, nil
	})
	if _, err := GenerateStructured[models.MedicationResponse](context.Background(), gen, Request{}, "x"); err == nil {
		t.Fatal("expected error for missing schema")
	}
}

func TestGenerateStructuredKeepsTextOnSchemaError(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, Request) (*Response, error) {
		return &Response{Text: `{"wrong":true}`}, nil
	})
	res, err := GenerateStructured[models.MedicationResponse](context.Background(), gen,
		Request{Schema: MedicationResponseSchema()}, "MedicationResponse")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if res.Parsed != nil {
		t.Error("Parsed must be nil")
	}
	if res.Text != `{"wrong":true}` {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestGenerateStructuredPassesTransportError(t *testing.T) {
	want := &TransportError{Category: "rate_limit", Retryable: true}
	gen := GeneratorFunc(func(context.Context, Request) (*Response, error) {
		return nil, want
	})
	_, err := GenerateStructured[models.MedicationResponse](context.Background(), gen,
		Request{Schema: MedicationResponseSchema()}, "MedicationResponse")
	if !errors.Is(err, want) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
