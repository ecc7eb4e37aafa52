// Package practice runs one subject-practice session over a fixed pool.
package practice

import (
	"context"
	"errors"
	"fmt"

	"github.com/miascience/quest/internal/grading"
	"github.com/miascience/quest/internal/model"
)

// State is a step of the session lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateLoading          State = "loading"
	StateAwaitingAnswer   State = "awaiting_answer"
	StateValidationFailed State = "validation_failed"
	StateGraded           State = "graded"
	// StateNoQuestion is the safe resting state when the pool is unusable.
	StateNoQuestion State = "no_question"
)

var (
	ErrNoQuestion    = errors.New("no question is being presented")
	ErrAlreadyGraded = errors.New("current question already graded")
)

// NoticeCode identifies a content-insufficiency notice.
type NoticeCode string

const (
	NoticeNoQuestions    NoticeCode = "no_questions"
	NoticeTooFewOptions  NoticeCode = "too_few_options"
	NoticeNoneSelectable NoticeCode = "none_selectable"
)

// Notice reports a content problem without failing the session.
type Notice struct {
	Code       NoticeCode `json:"code"`
	QuestionID string     `json:"questionId,omitempty"`
}

// Groups looks up question groups.
type Groups interface {
	Group(weekID string, subject model.Subject) (model.QuestionGroup, bool)
}

// Selector picks the next question from a pool.
type Selector interface {
	SelectNext(pool []model.Question, subject model.Subject) (model.Question, bool)
}

// Recorder applies a graded answer to the learner's state.
type Recorder interface {
	Record(ctx context.Context, subject model.Subject, q model.Question, eval model.Evaluation) grading.Outcome
}

// Session is transient: it is never persisted and is replaced on every start.
type Session struct {
	WeekID  string
	Subject model.Subject
	Pool    []model.Question

	current *model.Question
	state   State
	notices []Notice

	sel Selector
	rec Recorder
}

// New creates an idle session.
func New(sel Selector, rec Recorder) *Session {
	return &Session{state: StateIdle, sel: sel, rec: rec}
}

// Start loads the (weekID, subject) group and presents the first question.
// Content problems are reported as notices; Start never fails on them.
func (s *Session) Start(groups Groups, weekID string, subject model.Subject) {
	s.state = StateLoading
	s.WeekID = weekID
	s.Subject = subject
	s.Pool = nil
	s.current = nil
	s.notices = nil

	g, ok := groups.Group(weekID, subject)
	if !ok || len(g.Questions) == 0 {
		s.notices = append(s.notices, Notice{Code: NoticeNoQuestions})
		s.state = StateNoQuestion
		return
	}
	for _, q := range g.Questions {
		if q.Type == model.TypeMultipleChoice && len(q.Options) < model.MinOptions {
			s.notices = append(s.notices, Notice{Code: NoticeTooFewOptions, QuestionID: q.ID})
		}
	}
	s.Pool = g.Questions
	s.Next()
}

// Next selects a question from the same pool. Repeats are governed by the
// selector's rules, never by removing questions from the pool.
func (s *Session) Next() (model.Question, bool) {
	if len(s.Pool) == 0 {
		s.current = nil
		s.state = StateNoQuestion
		return model.Question{}, false
	}
	q, ok := s.sel.SelectNext(s.Pool, s.Subject)
	if !ok {
		s.current = nil
		s.state = StateNoQuestion
		s.notices = append(s.notices, Notice{Code: NoticeNoneSelectable})
		return model.Question{}, false
	}
	s.current = &q
	s.state = StateAwaitingAnswer
	return q, true
}

// Submit grades answer against the current question. A validation failure
// leaves the history and grades untouched and keeps the question open.
func (s *Session) Submit(ctx context.Context, answer model.Answer) (grading.Outcome, model.Evaluation, error) {
	if s.current == nil {
		return grading.Outcome{}, model.Evaluation{}, ErrNoQuestion
	}
	if s.state == StateGraded {
		return grading.Outcome{}, model.Evaluation{}, ErrAlreadyGraded
	}
	eval, err := grading.Evaluate(*s.current, answer)
	if errors.Is(err, grading.ErrValidation) {
		s.state = StateValidationFailed
		return grading.Outcome{}, model.Evaluation{}, err
	}
	if err != nil {
		return grading.Outcome{}, model.Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	out := s.rec.Record(ctx, s.Subject, *s.current, eval)
	s.state = StateGraded
	return out, eval, nil
}

// Current returns the question being presented.
func (s *Session) Current() (model.Question, bool) {
	if s.current == nil {
		return model.Question{}, false
	}
	return *s.current, true
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Notices returns the content notices raised since the last Start.
func (s *Session) Notices() []Notice {
	return s.notices
}
