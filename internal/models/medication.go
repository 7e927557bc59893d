// medication.go - Prescription data shapes shared by the pipeline, API and storage

package models

// Instructions describes how a medication is taken. Missing information is
// carried as a placeholder string, never an empty field.
type Instructions struct {
	How     string `json:"how" bson:"how"`
	HowMuch string `json:"how_much" bson:"how_much"`
	When    string `json:"when" bson:"when"`
}

// Medication is one line of a prescription. Its identity for
// reconciliation is MedicationName (exact match).
type Medication struct {
	MedicationName string       `json:"medication_name" bson:"medication_name"`
	Dosage         string       `json:"dosage" bson:"dosage"`
	Quantity       int          `json:"quantity" bson:"quantity"`
	Instructions   Instructions `json:"instructions" bson:"instructions"`
}

// MedicationResponse is the structured result of reading one prescription.
type MedicationResponse struct {
	Medications []Medication `json:"medications" bson:"medications"`
}

// NewMedicationResponse returns an empty response whose list marshals as [].
func NewMedicationResponse() *MedicationResponse {
	return &MedicationResponse{Medications: []Medication{}}
}

// SpellCheckResult is the verdict for a single medication name.
type SpellCheckResult struct {
	InputName     string   `json:"input_name" bson:"input_name"`
	CorrectedName string   `json:"corrected_name" bson:"corrected_name"`
	GenericName   []string `json:"generic_name" bson:"generic_name"`
	BrandNames    []string `json:"brand_names" bson:"brand_names"`
	IsCorrect     bool     `json:"is_correct" bson:"is_correct"`
	IsGeneric     bool     `json:"is_generic" bson:"is_generic"`
	Notes         string   `json:"notes" bson:"notes"`
}

// UnknownName is the corrected name used when the intended drug cannot be determined.
const UnknownName = "Unknown"

// SpellCheckResponse collects verdicts in the order the names were submitted.
type SpellCheckResponse struct {
	Drugs []SpellCheckResult `json:"drugs" bson:"drugs"`
}

// NewSpellCheckResponse returns an empty response whose list marshals as [].
func NewSpellCheckResponse() *SpellCheckResponse {
	return &SpellCheckResponse{Drugs: []SpellCheckResult{}}
}

// Normalize replaces nil slices so the value always serialises with
// arrays instead of null.
func (r *SpellCheckResult) Normalize() {
	if r.GenericName == nil {
		r.GenericName = []string{}
	}
	if r.BrandNames == nil {
		r.BrandNames = []string{}
	}
}

// Normalize replaces a nil medication list with an empty one.
func (r *MedicationResponse) Normalize() {
	if r.Medications == nil {
		r.Medications = []Medication{}
	}
}
