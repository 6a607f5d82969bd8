package match

import (
	"strings"
	"time"

	"job-alert-engine/internal/models"
)

// Per-field contribution weights for the keyword scorer.
const (
	titleExactWeight     = 1.0
	titlePartialWeight   = 0.8
	descExactWeight      = 0.6
	descPartialWeight    = 0.4
	skillMentionWeight   = 0.5
	companyMentionWeight = 0.3

	coverageBonusThreshold = 0.7
	coverageBonus          = 1.10
)

// Skill scorer tuning.
const (
	partialSkillWeight       = 0.8
	skillMatchFloor          = 0.3
	skillRatioBonusThreshold = 0.5
	skillRatioBonus          = 1.15
)

// KeywordScore rates how well a job's text fields cover the given keywords.
// No keywords means no signal: the score is 0, not a neutral default.
func KeywordScore(keywords []string, job models.Job) float64 {
	if len(keywords) == 0 {
		return 0
	}

	title := Normalize(job.Title)
	description := Normalize(job.Description)
	company := Normalize(job.Company)
	jobSkills := normalizeAll(job.Skills)

	var total float64
	considered := 0
	matched := 0

	for _, raw := range keywords {
		kw := Normalize(raw)
		if len(kw) < 2 {
			continue
		}
		considered++

		var c float64
		if strings.Contains(title, kw) {
			c += titleExactWeight
		} else {
			c += titlePartialWeight * wordOverlap(kw, title)
		}
		if strings.Contains(description, kw) {
			c += descExactWeight
		} else {
			c += descPartialWeight * wordOverlap(kw, description)
		}
		for _, s := range jobSkills {
			if strings.Contains(s, kw) {
				c += skillMentionWeight
				break
			}
		}
		if company != "" && strings.Contains(company, kw) {
			c += companyMentionWeight
		}

		if c > 1 {
			c = 1
		}
		if c > 0 {
			matched++
		}
		total += c
	}

	if considered == 0 {
		return 0
	}

	score := total / float64(considered)
	if float64(matched)/float64(considered) >= coverageBonusThreshold {
		score *= coverageBonus
	}
	return clamp01(score)
}

// wordOverlap returns the fraction of the keyword's constituent words found
// in text.
func wordOverlap(keyword, text string) float64 {
	if text == "" {
		return 0
	}
	words := strings.Fields(keyword)
	if len(words) == 0 {
		return 0
	}
	found := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			found++
		}
	}
	return float64(found) / float64(len(words))
}

// SkillScore rates the overlap between a user's skills and a job's declared
// skills. A job that declares no skills is skill-agnostic and scores neutral;
// a user with no skills keeps a low floor so other signals can still carry.
func SkillScore(userSkills, jobSkills []string) float64 {
	jobNorm := normalizeAll(jobSkills)
	if len(jobNorm) == 0 {
		return 0.5
	}
	userNorm := normalizeAll(userSkills)
	if len(userNorm) == 0 {
		return 0.2
	}

	exact := 0
	partial := 0
	for _, us := range userNorm {
		switch classifySkillMatch(us, jobNorm) {
		case matchExact:
			exact++
		case matchPartial:
			partial++
		}
	}

	weighted := float64(exact) + partialSkillWeight*float64(partial)

	denom := float64(len(userNorm))
	if len(jobNorm) > len(userNorm) {
		denom = float64(len(jobNorm))
	}

	score := clamp01(weighted / denom)
	if exact+partial > 0 && score < skillMatchFloor {
		score = skillMatchFloor
	}
	if weighted/float64(len(userNorm)) >= skillRatioBonusThreshold {
		score = clamp01(score * skillRatioBonus)
	}
	return score
}

type skillMatchKind int

const (
	matchNone skillMatchKind = iota
	matchPartial
	matchExact
)

func classifySkillMatch(userSkill string, jobSkills []string) skillMatchKind {
	best := matchNone
	for _, js := range jobSkills {
		if userSkill == js {
			return matchExact
		}
		if best == matchNone && partialSkillMatch(userSkill, js) {
			best = matchPartial
		}
	}
	return best
}

// partialSkillMatch reports containment either way, or a shared word token of
// at least two characters.
func partialSkillMatch(a, b string) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, t := range skillTokens(a) {
		for _, u := range skillTokens(b) {
			if t == u {
				return true
			}
		}
	}
	return false
}

// skillTokens splits a normalized skill on the common separators, dropping
// one-character fragments.
func skillTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '-', '_', '.':
			return true
		}
		return false
	})

	out := make([]string, 0, len(fields))
	for _, t := range fields {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

// LocationScore compares a job's location against the preferred list. No
// preference is neutral; a job without a location cannot match one.
func LocationScore(preferred []string, jobLocation string) float64 {
	prefs := normalizeAll(preferred)
	if len(prefs) == 0 {
		return 0.5
	}
	loc := Normalize(jobLocation)
	if loc == "" {
		return 0
	}

	best := 0.0
	for _, p := range prefs {
		if p == loc {
			return 1.0
		}
		if strings.Contains(loc, p) || strings.Contains(p, loc) {
			best = 0.7
		}
	}
	return best
}

// JobTypeScore gives full credit when the job's type is in the preference
// set, nothing otherwise. No preference is neutral.
func JobTypeScore(preferred []string, jobType string) float64 {
	prefs := normalizeAll(preferred)
	if len(prefs) == 0 {
		return 0.5
	}
	jt := Normalize(jobType)
	for _, p := range prefs {
		if p == jt {
			return 1.0
		}
	}
	return 0
}

// RecencyScore maps posting age to a stepped freshness value. Jobs without a
// posting date score neutral.
func RecencyScore(createdAt *time.Time, now time.Time) float64 {
	if createdAt == nil || createdAt.IsZero() {
		return 0.5
	}

	age := now.Sub(*createdAt)
	switch {
	case age <= 7*24*time.Hour:
		return 1.0
	case age <= 30*24*time.Hour:
		return 0.7
	case age <= 90*24*time.Hour:
		return 0.4
	default:
		return 0.1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
