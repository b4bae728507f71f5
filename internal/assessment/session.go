// Package assessment runs one skill quiz attempt and turns a passing result
// into a validated-skill credential.
package assessment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/catalog"
	"github.com/spigell/talentmatch/internal/logger"
	"github.com/spigell/talentmatch/internal/skills"
)

// PassThreshold is the minimum percentage of correct answers that passes.
const PassThreshold = 70

var (
	// ErrPrecondition is returned when a transition is not legal in the current state.
	ErrPrecondition = errors.New("assessment precondition violated")
	// ErrInvalidArgument is returned for answers outside the option range.
	ErrInvalidArgument = errors.New("invalid assessment argument")
	// ErrUnknownSkill marks a skill without questions. SelectSkill reports it
	// through its boolean result instead of failing.
	ErrUnknownSkill = errors.New("no assessment available for skill")
)

// State is the position of a session in its lifecycle.
type State int

const (
	SelectingSkill State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case SelectingSkill:
		return "selecting_skill"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CredentialSink persists a passed skill into the owning profile's validated set.
// Implementations must be idempotent.
type CredentialSink interface {
	Confirm(skill skills.Name) error
}

// SinkFunc adapts a function to CredentialSink.
type SinkFunc func(skill skills.Name) error

func (f SinkFunc) Confirm(skill skills.Name) error { return f(skill) }

// Bank supplies question banks. *catalog.Catalog implements it.
type Bank interface {
	QuestionsFor(skill skills.Name) []catalog.Question
}

// Result is the outcome of a completed session.
type Result struct {
	Skill   skills.Name
	Correct int
	Total   int
	Passed  bool
}

// Percentage returns correct/total*100.
func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// Session is a single attempt at one skill's question set. It is not safe for
// concurrent use; each user interaction drives it from one goroutine.
type Session struct {
	ID string

	bank   Bank
	sink   CredentialSink
	base   *zap.Logger
	logger *zap.Logger

	state     State
	skill     skills.Name
	questions []catalog.Question
	index     int
	answers   map[string]int
	result    Result
}

// NewSession returns a session waiting for a skill to be selected.
// A nil sink means passes are not persisted.
func NewSession(bank Bank, sink CredentialSink, log *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		bank:   bank,
		sink:   sink,
		base:   log,
		logger: logger.WithFields(log, zap.String("session_id", id)),
		state:  SelectingSkill,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Skill() skills.Name { return s.skill }

// Progress returns the current question index and the number of questions.
func (s *Session) Progress() (int, int) {
	return s.index, len(s.questions)
}

// SelectSkill starts the attempt for skill. It returns false and stays in
// SelectingSkill when the skill has no questions.
func (s *Session) SelectSkill(skill skills.Name) (bool, error) {
	if s.state != SelectingSkill {
		return false, fmt.Errorf("select skill in state %s: %w", s.state, ErrPrecondition)
	}

	questions := s.bank.QuestionsFor(skill)
	if len(questions) == 0 {
		s.logger.Info("assessment unavailable", zap.String("skill", skill.String()))
		return false, nil
	}

	// the catalog spelling, not the caller's, is what gets recorded
	s.skill = skills.Name(questions[0].Skill.String())
	s.questions = questions
	s.index = 0
	s.answers = make(map[string]int, len(questions))
	s.state = InProgress

	s.logger.Debug("assessment started",
		zap.String("skill", s.skill.String()),
		zap.Int("questions", len(questions)),
	)

	return true, nil
}

// CurrentQuestion returns the question at the current index.
func (s *Session) CurrentQuestion() (catalog.Question, error) {
	if s.state != InProgress {
		return catalog.Question{}, fmt.Errorf("current question in state %s: %w", s.state, ErrPrecondition)
	}
	return s.questions[s.index], nil
}

// Answer returns the recorded option for the current question, if any.
func (s *Session) Answer() (int, bool) {
	if s.state != InProgress {
		return 0, false
	}
	option, ok := s.answers[s.questions[s.index].ID]
	return option, ok
}

// RecordAnswer sets or overwrites the answer to the current question.
func (s *Session) RecordAnswer(option int) error {
	if s.state != InProgress {
		return fmt.Errorf("record answer in state %s: %w", s.state, ErrPrecondition)
	}

	q := s.questions[s.index]
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("option %d for question %q with %d options: %w", option, q.ID, len(q.Options), ErrInvalidArgument)
	}

	s.answers[q.ID] = option
	return nil
}

// Advance moves to the next question, or completes the session after the
// last one. The current question must have an answer.
func (s *Session) Advance() error {
	if s.state != InProgress {
		return fmt.Errorf("advance in state %s: %w", s.state, ErrPrecondition)
	}

	q := s.questions[s.index]
	if _, ok := s.answers[q.ID]; !ok {
		return fmt.Errorf("advance over unanswered question %q: %w", q.ID, ErrPrecondition)
	}

	if s.index < len(s.questions)-1 {
		s.index++
		return nil
	}

	return s.complete()
}

func (s *Session) complete() error {
	correct := 0
	for _, q := range s.questions {
		if option, ok := s.answers[q.ID]; ok && option == q.Correct {
			correct++
		}
	}

	total := len(s.questions)
	s.result = Result{
		Skill:   s.skill,
		Correct: correct,
		Total:   total,
		// integer form of correct/total*100 >= 70, so 70% exactly passes
		Passed: correct*100 >= PassThreshold*total,
	}
	s.state = Completed

	s.logger.Info("assessment completed",
		zap.String("skill", s.skill.String()),
		zap.Int("correct", correct),
		zap.Int("total", total),
		zap.Bool("passed", s.result.Passed),
	)

	if !s.result.Passed || s.sink == nil {
		return nil
	}

	if err := s.sink.Confirm(s.skill); err != nil {
		return fmt.Errorf("confirming credential for %s: %w", s.skill, err)
	}

	return nil
}

// Result returns the outcome of a completed session.
func (s *Session) Result() (Result, error) {
	if s.state != Completed {
		return Result{}, fmt.Errorf("result in state %s: %w", s.state, ErrPrecondition)
	}
	return s.result, nil
}

// Retake returns a brand-new session sharing the bank, sink and logger.
// Nothing from s carries over.
func (s *Session) Retake() *Session {
	return NewSession(s.bank, s.sink, s.base)
}
