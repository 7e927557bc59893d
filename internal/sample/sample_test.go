package sample

import "testing"

func TestDummyReturnsFreshCopies(t *testing.T) {
	meds, verdicts := Dummy()
	if len(meds.Medications) != 6 || len(verdicts.Drugs) != 9 {
		t.Fatalf("got %d medications, %d verdicts", len(meds.Medications), len(verdicts.Drugs))
	}

	meds.Medications[0].MedicationName = "changed"
	again, _ := Dummy()
	if again.Medications[0].MedicationName != "Amoxicillin" {
		t.Error("Dummy must not share state between calls")
	}
}

func TestDummyVerdictsHaveLists(t *testing.T) {
	_, verdicts := Dummy()
	for _, d := range verdicts.Drugs {
		if d.GenericName == nil || d.BrandNames == nil {
			t.Errorf("%s: nil list", d.InputName)
		}
		if !d.IsCorrect && d.CorrectedName == d.InputName {
			t.Errorf("%s: flagged incorrect without a correction", d.InputName)
		}
	}
}
