// Package matching scores how well a candidate profile fits a job listing.
package matching

import (
	"math"
	"strings"

	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/skills"
)

// Signal weights. Scores are additive and unbounded; they only order results.
const (
	ContractWeight       = 50
	FullTimeWeight       = 30
	SkillWeight          = 20
	ValidatedSkillWeight = 30
	ExperienceWeight     = 15
	FeaturedWeight       = 10
	LocationWeight       = 25

	// ExperienceTolerance is the largest year difference that still counts as close.
	ExperienceTolerance = 2
)

var contractTypes = []string{"contract", "temporary", "freelance"}

const fullTimeType = "full-time"

// Breakdown is the per-signal contribution to a match score.
type Breakdown struct {
	EmploymentType int      `json:"employment_type"`
	Skills         int      `json:"skills"`
	Validated      int      `json:"validated"`
	Experience     int      `json:"experience"`
	Featured       int      `json:"featured"`
	Location       int      `json:"location"`
	Total          int      `json:"total"`
	MatchedSkills  []string `json:"matched_skills,omitempty"`
	ValidatedMatch []string `json:"validated_match,omitempty"`
}

// Candidate is a candidate profile with its skill sets resolved once, so it
// can be scored against many listings.
type Candidate struct {
	Profile   *profile.Candidate
	skills    skills.Set
	validated skills.Set
	years     float64
	hasYears  bool
	location  string
}

// Prepare resolves the sets and parsed values of c used by scoring.
func Prepare(c *profile.Candidate) *Candidate {
	if c == nil {
		c = &profile.Candidate{}
	}

	years, ok := c.Experience.Years()
	return &Candidate{
		Profile:   c,
		skills:    c.SkillSet(),
		validated: c.ValidatedSet(),
		years:     years,
		hasYears:  ok,
		location:  strings.ToLower(strings.TrimSpace(c.Location)),
	}
}

// Score returns the match score of candidate against listing.
func Score(candidate *profile.Candidate, listing *profile.Listing) int {
	return Prepare(candidate).Explain(listing).Total
}

// Explain returns the per-signal breakdown of candidate against listing.
func Explain(candidate *profile.Candidate, listing *profile.Listing) Breakdown {
	return Prepare(candidate).Explain(listing)
}

// Score returns the match score of c against listing.
func (c *Candidate) Score(listing *profile.Listing) int {
	return c.Explain(listing).Total
}

// Explain returns the per-signal breakdown of c against listing.
func (c *Candidate) Explain(listing *profile.Listing) Breakdown {
	var b Breakdown
	if listing == nil {
		return b
	}

	b.EmploymentType = c.employmentScore(listing.EmploymentType)

	// a listing naming the same skill twice still counts it once
	listed := skills.NewSet(listing.Skills...)
	listed.Each(func(skill skills.Name) {
		if !c.skills.Contains(skill) {
			return
		}
		b.Skills += SkillWeight
		b.MatchedSkills = append(b.MatchedSkills, skill.String())

		if c.validated.Contains(skill) {
			b.Validated += ValidatedSkillWeight
			b.ValidatedMatch = append(b.ValidatedMatch, skill.String())
		}
	})

	if years, ok := listing.Experience.Years(); ok && c.hasYears {
		if math.Abs(c.years-years) <= ExperienceTolerance {
			b.Experience = ExperienceWeight
		}
	}

	if listing.Featured {
		b.Featured = FeaturedWeight
	}

	if c.location != "" && strings.Contains(strings.ToLower(listing.Location), c.location) {
		b.Location = LocationWeight
	}

	b.Total = b.EmploymentType + b.Skills + b.Validated + b.Experience + b.Featured + b.Location
	return b
}

func (c *Candidate) employmentScore(employmentType string) int {
	kind := strings.ToLower(employmentType)

	if c.Profile.ContractPreference {
		for _, t := range contractTypes {
			if strings.Contains(kind, t) {
				return ContractWeight
			}
		}
		return 0
	}

	if strings.Contains(kind, fullTimeType) {
		return FullTimeWeight
	}
	return 0
}
