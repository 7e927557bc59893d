// reconcile.go - Name harvesting and spelling-correction reconciliation

package processor

import "github.com/bosocmputer/pharmacist_assistant/internal/models"

// HarvestNames lists medication names in extraction order, duplicates kept.
func HarvestNames(resp *models.MedicationResponse) []string {
	if resp == nil {
		return []string{}
	}
	names := make([]string, 0, len(resp.Medications))
	for _, med := range resp.Medications {
		names = append(names, med.MedicationName)
	}
	return names
}

// UniqueNames drops repeated names, keeping first-occurrence order.
func UniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Reconcile rewrites, in place, every medication whose name matches the
// InputName of a result flagged incorrect, using that result's CorrectedName.
// Results are applied in order. The same pointer is returned.
func Reconcile(resp *models.MedicationResponse, results *models.SpellCheckResponse) *models.MedicationResponse {
	resp, _ = reconcile(resp, results)
	return resp
}

// reconcile is Reconcile that also reports how many names were rewritten
func reconcile(resp *models.MedicationResponse, results *models.SpellCheckResponse) (*models.MedicationResponse, int) {
	if resp == nil || results == nil {
		return resp, 0
	}

	corrected := 0
	for _, verdict := range results.Drugs {
		if verdict.IsCorrect {
			continue
		}
		for i := range resp.Medications {
			if resp.Medications[i].MedicationName == verdict.InputName {
				resp.Medications[i].MedicationName = verdict.CorrectedName
				corrected++
			}
		}
	}
	return resp, corrected
}
