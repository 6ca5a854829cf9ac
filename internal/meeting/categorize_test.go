package meeting

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestCategorizeDefault(t *testing.T) {
	gt.Equal(t, Categorize("weekly standup notes"), []Category{CategoryOther})
}

func TestCategorizeSingleMatch(t *testing.T) {
	gt.Equal(t, Categorize("new REST endpoint design"), []Category{CategoryAPI})
	gt.Equal(t, Categorize("rotate the OAuth secrets"), []Category{CategorySecurity})
	gt.Equal(t, Categorize("Q3 timeline discussion"), []Category{CategoryPlanning})
	gt.Equal(t, Categorize("assess the incident response"), []Category{CategoryReview})
}

func TestCategorizeMultiMatch(t *testing.T) {
	categories := Categorize("Let's review the API security roadmap")
	gt.Equal(t, categories, []Category{CategoryAPI, CategorySecurity, CategoryPlanning, CategoryReview})
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	gt.Equal(t, Categorize("API ROADMAP"), []Category{CategoryAPI, CategoryPlanning})
}
