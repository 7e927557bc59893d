// Package sample provides fixed demo prescription data for trying the
// service without an image or API keys.
package sample

import "github.com/bosocmputer/pharmacist_assistant/internal/models"

// Dummy returns a demo prescription and its spell-check verdicts.
// A fresh copy is built on every call.
func Dummy() (*models.MedicationResponse, *models.SpellCheckResponse) {
	meds := &models.MedicationResponse{Medications: []models.Medication{
		{
			MedicationName: "Amoxicillin",
			Dosage:         "500mg",
			Quantity:       30,
			Instructions:   models.Instructions{How: "Take with food", HowMuch: "1 tablet", When: "Every 8 hours for 7 days"},
		},
		{
			MedicationName: "Ibuprofen",
			Dosage:         "200mg",
			Quantity:       15,
			Instructions:   models.Instructions{How: "Take as needed", HowMuch: "1 tablet", When: "Every 6 hours if pain persists"},
		},
		{
			MedicationName: "Lorazepam",
			Dosage:         "1mg",
			Quantity:       30,
			Instructions:   models.Instructions{How: "Take at bedtime", HowMuch: "1 tablet", When: "Every night for anxiety"},
		},
		{
			MedicationName: "Paracetamol",
			Dosage:         "500mg",
			Quantity:       15,
			Instructions:   models.Instructions{How: "Take with water", HowMuch: "1 tablet", When: "Every 4-6 hours for pain"},
		},
		{
			MedicationName: "Amoxicillin + Clavulanate",
			Dosage:         "500mg + 125mg",
			Quantity:       21,
			Instructions:   models.Instructions{How: "Take with food", HowMuch: "1 tablet", When: "Every 8 hours for 7 days"},
		},
		{
			MedicationName: "Sertraline",
			Dosage:         "50mg",
			Quantity:       30,
			Instructions:   models.Instructions{How: "Take with water", HowMuch: "1 tablet", When: "Every morning"},
		},
	}}

	verdicts := &models.SpellCheckResponse{Drugs: []models.SpellCheckResult{
		{
			InputName: "Amoxicillin", CorrectedName: "Amoxicillin",
			GenericName: []string{"Amoxicillin"}, BrandNames: []string{"Amoxil", "Trimox"},
			IsCorrect: true, IsGeneric: true, Notes: "No spelling errors detected.",
		},
		{
			InputName: "Ibuprofen", CorrectedName: "Ibuprofen",
			GenericName: []string{"Ibuprofen"}, BrandNames: []string{"Advil", "Motrin", "Nurofen"},
			IsCorrect: true, IsGeneric: true, Notes: "No spelling errors detected.",
		},
		{
			InputName: "Lorazepam", CorrectedName: "Lorazepam",
			GenericName: []string{"Lorazepam"}, BrandNames: []string{"Ativan"},
			IsCorrect: true, IsGeneric: true, Notes: "No spelling errors detected.",
		},
		{
			InputName: "Paracetomol", CorrectedName: "Paracetamol",
			GenericName: []string{"Paracetamol"}, BrandNames: []string{"Tylenol", "Panadol"},
			IsCorrect: false, IsGeneric: true, Notes: "Common misspelling corrected.",
		},
		{
			InputName: "Amoxicillin + Clavulanate", CorrectedName: "Amoxicillin + Clavulanate",
			GenericName: []string{"Amoxicillin", "Clavulanic Acid"}, BrandNames: []string{"Augmentin", "Clavamox"},
			IsCorrect: true, IsGeneric: true, Notes: "Combination drug verified.",
		},
		{
			InputName: "Sertraline", CorrectedName: "Sertraline",
			GenericName: []string{"Sertraline"}, BrandNames: []string{"Zoloft"},
			IsCorrect: true, IsGeneric: true, Notes: "No spelling errors detected.",
		},
		{
			InputName: "Enzoflam", CorrectedName: "Enzoflam",
			GenericName: []string{"Diclofenac", "Paracetamol", "Serratiopeptidase"}, BrandNames: []string{"Enzoflam MR", "Enzoflam SP", "Enzoflam CT", "Enzoflam P", "Enzoflam Gel"},
			IsCorrect: true, IsGeneric: false, Notes: "Brand name verified. It's a combination drug.",
		},
		{
			InputName: "Advilv", CorrectedName: "Advil",
			GenericName: []string{"Ibuprofen"}, BrandNames: []string{"Advil", "Motrin", "Nurofen"},
			IsCorrect: false, IsGeneric: false, Notes: "Likely intended to be 'Advil'.",
		},
		{
			InputName: "Xytrnex", CorrectedName: models.UnknownName,
			GenericName: []string{}, BrandNames: []string{},
			IsCorrect: false, IsGeneric: false, Notes: "Unable to confidently determine the intended medicine.",
		},
	}}

	return meds, verdicts
}
