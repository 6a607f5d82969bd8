package match

import (
	"strings"

	"job-alert-engine/internal/models"
)

// LearnedSignals are extra keywords and skills mined from applications that
// made it past screening.
type LearnedSignals struct {
	Keywords []string
	Skills   []string
}

// ExtractLearnedSignals tokenizes the titles of previously successful
// applications into keywords and collects their declared skills. Both sets
// come back normalized and deduplicated in insertion order.
func ExtractLearnedSignals(apps []models.HistoricalApplication) LearnedSignals {
	keywords := newOrderedSet()
	skills := newOrderedSet()

	for _, app := range apps {
		for _, word := range strings.Fields(Normalize(app.JobTitle)) {
			if len(word) > 3 {
				keywords.add(word)
			}
		}
		for _, skill := range app.JobSkills {
			skills.add(skill)
		}
	}

	return LearnedSignals{
		Keywords: keywords.values(),
		Skills:   skills.values(),
	}
}
