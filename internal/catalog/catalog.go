// Package catalog holds the static registry of assessable skills and their
// ordered question banks.
package catalog

import (
	"bytes"
	"fmt"
	"strings"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/talentmatch/internal/skills"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Question is a single multiple-choice question for one skill.
type Question struct {
	ID      string      `mapstructure:"id" json:"id" validate:"required"`
	Skill   skills.Name `mapstructure:"-" json:"skill" validate:"required"`
	Prompt  string      `mapstructure:"prompt" json:"prompt" validate:"required"`
	Options []string    `mapstructure:"options" json:"options" validate:"min=2,dive,required"`
	Correct int         `mapstructure:"correct" json:"correct" validate:"gte=0"`
}

// Catalog maps skills to question banks. It is immutable after construction.
type Catalog struct {
	banks map[string][]Question
	order []skills.Name
}

type skillEntry struct {
	Name      string          `mapstructure:"name"`
	Questions []questionEntry `mapstructure:"questions"`
}

// questionEntry is a question as written in a catalog file. A missing
// correct key must not silently become option 0.
type questionEntry struct {
	ID      string   `mapstructure:"id"`
	Prompt  string   `mapstructure:"prompt"`
	Options []string `mapstructure:"options"`
	Correct *int     `mapstructure:"correct"`
}

// New builds a catalog from questions, keeping their relative order per skill.
func New(questions []Question) (*Catalog, error) {
	validate := validator.New()

	c := &Catalog{banks: make(map[string][]Question)}
	seen := make(map[string]struct{}, len(questions))

	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d (%q): %w", i, q.ID, err)
		}
		if q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %q: correct option %d out of range [0,%d)", q.ID, q.Correct, len(q.Options))
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}

		key := q.Skill.Key()
		if _, ok := c.banks[key]; !ok {
			c.order = append(c.order, skills.Name(q.Skill.String()))
		}

		q.Options = append([]string(nil), q.Options...)
		c.banks[key] = append(c.banks[key], q)
	}

	return c, nil
}

// Default returns the catalog embedded into the binary.
func Default() (*Catalog, error) {
	return parse(defaultCatalog, "yaml")
}

// Load reads a catalog from a YAML or JSON file.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	return decode(v)
}

func parse(data []byte, format string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Catalog, error) {
	var entries []skillEntry
	if err := mapstructure.Decode(v.Get("skills"), &entries); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	var questions []Question
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry without skill name")
		}
		for _, q := range entry.Questions {
			if q.Correct == nil {
				return nil, fmt.Errorf("question %q of %s: missing correct option", q.ID, name)
			}
			questions = append(questions, Question{
				ID:      q.ID,
				Skill:   skills.Name(name),
				Prompt:  q.Prompt,
				Options: q.Options,
				Correct: *q.Correct,
			})
		}
	}

	return New(questions)
}

// QuestionsFor returns a copy of the ordered question bank for skill.
// Unknown skills yield an empty slice.
func (c *Catalog) QuestionsFor(skill skills.Name) []Question {
	bank := c.banks[skill.Key()]
	out := make([]Question, len(bank))
	for i, q := range bank {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Skills lists the assessable skills in catalog order.
func (c *Catalog) Skills() []skills.Name {
	return append([]skills.Name(nil), c.order...)
}

// Has reports whether skill has at least one question.
func (c *Catalog) Has(skill skills.Name) bool {
	return len(c.banks[skill.Key()]) > 0
}
