package match

import (
	"math"
	"time"

	"job-alert-engine/internal/models"
)

// Component weights. They sum to 1.0 so the aggregate stays inside [0,100].
const (
	weightKeyword  = 0.30
	weightSkill    = 0.35
	weightLocation = 0.15
	weightJobType  = 0.10
	weightRecency  = 0.10
)

// Components holds the per-signal scores, each in [0,1].
type Components struct {
	Keyword  float64 `json:"keyword"`
	Skill    float64 `json:"skill"`
	Location float64 `json:"location"`
	JobType  float64 `json:"jobType"`
	Recency  float64 `json:"recency"`
}

// MatchResult is one scored job. Built fresh per run and handed to the
// caller; the engine never persists it.
type MatchResult struct {
	Job        models.Job `json:"job"`
	Score      int        `json:"score"`
	Components Components `json:"componentScores"`
	Reasons    []string   `json:"reasons"`
}

// Criteria is the effective preference set a job is scored against.
type Criteria struct {
	Keywords  []string
	Skills    []string
	Locations []string
	JobTypes  []string
}

// ScoreJob runs every field scorer and folds the results into a single match.
func ScoreJob(c Criteria, job models.Job, now time.Time) MatchResult {
	comps := Components{
		Keyword:  KeywordScore(c.Keywords, job),
		Skill:    SkillScore(c.Skills, job.Skills),
		Location: LocationScore(c.Locations, job.Location),
		JobType:  JobTypeScore(c.JobTypes, job.JobType),
		Recency:  RecencyScore(job.CreatedAt, now),
	}

	return MatchResult{
		Job:        job,
		Score:      aggregate(comps),
		Components: comps,
		Reasons:    reasons(comps),
	}
}

func aggregate(c Components) int {
	sum := weightKeyword*c.Keyword +
		weightSkill*c.Skill +
		weightLocation*c.Location +
		weightJobType*c.JobType +
		weightRecency*c.Recency

	return int(math.Round(sum * 100))
}

// reasons names the signals that carried the match. A result with no strong
// signal still gets the generic line, so the list is never empty.
func reasons(c Components) []string {
	var out []string
	if c.Keyword > 0.5 {
		out = append(out, "Matches your keywords")
	}
	if c.Skill > 0.5 {
		out = append(out, "Your skills fit this role")
	}
	if c.Location > 0.5 {
		out = append(out, "In your preferred location")
	}
	if c.JobType == 1.0 {
		out = append(out, "Preferred job type")
	}
	if c.Recency > 0.7 {
		out = append(out, "Recently posted")
	}
	if len(out) == 0 {
		out = append(out, "Partial match to your profile")
	}
	return out
}
