// Package profile defines the candidate and job listing records read by the
// matching engine, and loads them from YAML or JSON files.
package profile

import (
	"math"
	"strconv"
	"strings"

	"github.com/spigell/talentmatch/internal/skills"
)

// Experience is a raw years-of-experience value. It may be empty or
// malformed; Years reports whether it holds a usable number.
type Experience string

// Years parses the value as a number of years.
func (e Experience) Years() (float64, bool) {
	s := strings.TrimSpace(string(e))
	if s == "" {
		return 0, false
	}

	years, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) {
		return 0, false
	}

	return years, true
}

// Candidate is the part of a candidate profile the engine scores against.
type Candidate struct {
	ID                 string     `mapstructure:"id" json:"id" validate:"required"`
	Name               string     `mapstructure:"name" json:"name,omitempty"`
	Skills             []string   `mapstructure:"skills" json:"skills,omitempty"`
	ValidatedSkills    []string   `mapstructure:"validated_skills" json:"validated_skills,omitempty"`
	Experience         Experience `mapstructure:"experience_years" json:"experience_years,omitempty"`
	Location           string     `mapstructure:"location" json:"location,omitempty"`
	ContractPreference bool       `mapstructure:"contract_preference" json:"contract_preference"`
}

// SkillSet returns the candidate's skills as a set.
func (c *Candidate) SkillSet() skills.Set {
	return skills.NewSet(c.Skills...)
}

// ValidatedSet returns the candidate's validated skills as a set.
func (c *Candidate) ValidatedSet() skills.Set {
	return skills.NewSet(c.ValidatedSkills...)
}

// WithValidated returns a copy of c whose validated skills also include
// validated. c is not modified.
func (c *Candidate) WithValidated(validated skills.Set) *Candidate {
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	out.ValidatedSkills = c.ValidatedSet().Union(validated).Names()
	return &out
}
