package meeting

import "strings"

// categoryKeywords drives the heuristic auto-categorizer. Matching is a
// plain case-insensitive substring check, not ML.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryAPI, []string{"api", "endpoint", "rest"}},
	{CategorySecurity, []string{"security", "auth", "oauth"}},
	{CategoryPlanning, []string{"plan", "roadmap", "timeline"}},
	{CategoryReview, []string{"review", "assess", "evaluate"}},
}

// Categorize derives category tags from meeting text. Multiple
// categories may match; if none do, the default category is returned.
// Pure and deterministic.
func Categorize(text string) []Category {
	lower := strings.ToLower(text)

	var categories []Category
	for _, group := range categoryKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				categories = append(categories, group.category)
				break
			}
		}
	}

	if len(categories) == 0 {
		return []Category{CategoryOther}
	}
	return categories
}
