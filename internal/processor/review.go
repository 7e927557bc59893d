// review.go - Flags name corrections a pharmacist should double-check
//
// A correction that changes most of the name is more likely a different drug
// than a misspelling, so it is scored by edit distance and graded.

package processor

import (
	"math"
	"regexp"
	"strings"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
)

// ReviewThreshold is the similarity (0-100) below which a correction needs review.
const ReviewThreshold = 70.0

// ReviewItem grades one verification verdict.
type ReviewItem struct {
	InputName      string  `json:"input_name"`
	CorrectedName  string  `json:"corrected_name"`
	Similarity     float64 `json:"similarity"` // 0-100
	Level          string  `json:"level"`
	RequiresReview bool    `json:"requires_review"`
	Reason         string  `json:"reason,omitempty"`
}

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normalizeName lowercases and collapses punctuation to single spaces
func normalizeName(name string) string {
	name = nonAlnum.ReplaceAllString(strings.ToLower(name), " ")
	return strings.TrimSpace(name)
}

// levenshteinDistance is the rune-level edit distance between s1 and s2
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// NameSimilarity scores two medication names from 0 to 100
func NameSimilarity(a, b string) float64 {
	a, b = normalizeName(a), normalizeName(b)
	if a == b {
		return 100.0
	}

	maxLen := float64(max(len([]rune(a)), len([]rune(b))))
	if maxLen == 0 {
		return 0.0
	}

	similarity := (1.0 - float64(levenshteinDistance(a, b))/maxLen) * 100.0
	return math.Round(math.Max(0, similarity)*10) / 10
}

// confidenceLevel grades a similarity score
func confidenceLevel(score float64) string {
	switch {
	case score >= 95:
		return "very_high"
	case score >= 85:
		return "high"
	case score >= ReviewThreshold:
		return "medium"
	case score >= 50:
		return "low"
	default:
		return "very_low"
	}
}

// ReviewCorrections grades every verdict, in order
func ReviewCorrections(verdicts *models.SpellCheckResponse) []ReviewItem {
	items := []ReviewItem{}
	if verdicts == nil {
		return items
	}

	for _, v := range verdicts.Drugs {
		item := ReviewItem{
			InputName:     v.InputName,
			CorrectedName: v.CorrectedName,
		}

		switch {
		case v.CorrectedName == models.UnknownName:
			item.Level = "very_low"
			item.RequiresReview = true
			item.Reason = "medication could not be identified"
		case v.IsCorrect:
			item.Similarity = 100.0
			item.Level = "very_high"
		default:
			item.Similarity = NameSimilarity(v.InputName, v.CorrectedName)
			item.Level = confidenceLevel(item.Similarity)
			if item.Similarity < ReviewThreshold {
				item.RequiresReview = true
				item.Reason = "correction differs substantially from the written name"
			}
		}

		items = append(items, item)
	}
	return items
}

// NeedsReview reports whether any item requires review
func NeedsReview(items []ReviewItem) bool {
	for _, it := range items {
		if it.RequiresReview {
			return true
		}
	}
	return false
}
