// Package grading checks submitted answers and turns the outcome into a
// mastery delta plus a history entry.
package grading

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/miascience/quest/internal/history"
	"github.com/miascience/quest/internal/mastery"
	"github.com/miascience/quest/internal/model"
)

const (
	// CorrectFactor scales a question's weight into the grade gain.
	CorrectFactor = 0.15
	// IncorrectFactor scales a question's weight into the grade loss.
	IncorrectFactor = 0.10
)

// ErrValidation marks a submission that cannot be graded. It never consumes
// an attempt.
var ErrValidation = errors.New("invalid submission")

var (
	ErrNoSelection = fmt.Errorf("%w: no option selected", ErrValidation)
	ErrEmptyAnswer = fmt.Errorf("%w: empty answer", ErrValidation)
)

// Evaluate checks answer against q.
func Evaluate(q model.Question, answer model.Answer) (model.Evaluation, error) {
	switch q.Type {
	case model.TypeMultipleChoice:
		if answer.Index == nil || *answer.Index < 0 || *answer.Index >= len(q.Options) {
			return model.Evaluation{}, ErrNoSelection
		}
		idx := *answer.Index
		return model.Evaluation{
			IsCorrect:        idx == q.CorrectIndex,
			NormalizedAnswer: q.Options[idx],
		}, nil

	case model.TypeTrueFalse:
		if answer.Choice == nil {
			return model.Evaluation{}, ErrNoSelection
		}
		chosen := strconv.FormatBool(*answer.Choice)
		return model.Evaluation{
			IsCorrect:        chosen == q.CorrectAnswer,
			NormalizedAnswer: chosen,
		}, nil

	case model.TypeOpen:
		text := strings.TrimSpace(answer.Text)
		if text == "" {
			return model.Evaluation{}, ErrEmptyAnswer
		}
		lower := cases.Lower(language.Und)
		return model.Evaluation{
			IsCorrect:        strings.Contains(lower.String(text), lower.String(q.CorrectAnswer)),
			NormalizedAnswer: text,
		}, nil
	}
	return model.Evaluation{}, fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
}

// Delta returns the grade change for answering q.
func Delta(q model.Question, correct bool) float64 {
	if correct {
		return q.Weight * CorrectFactor
	}
	return -q.Weight * IncorrectFactor
}

// Outcome is what recording a graded answer produced.
type Outcome struct {
	Delta    float64            `json:"delta"`
	NewGrade float64            `json:"newGrade"`
	Entry    model.HistoryEntry `json:"entry"`
}

// Engine applies graded answers to the tracker and the history log.
type Engine struct {
	tracker *mastery.Tracker
	log     *history.Log
}

// NewEngine creates an Engine.
func NewEngine(tracker *mastery.Tracker, log *history.Log) *Engine {
	return &Engine{tracker: tracker, log: log}
}

// RecordOutcome updates the subject grade first, then appends the history
// entry, and returns the applied delta.
func (e *Engine) RecordOutcome(subject model.Subject, q model.Question, eval model.Evaluation) Outcome {
	delta := Delta(q, eval.IsCorrect)
	newGrade := e.tracker.ApplyDelta(subject, delta)
	entry := e.log.Append(model.HistoryEntry{
		QuestionID:   q.ID,
		Subject:      subject,
		Difficulty:   q.Difficulty,
		WasCorrect:   eval.IsCorrect,
		UserAnswer:   eval.NormalizedAnswer,
		GradeDelta:   mastery.Round2(delta),
		QuestionText: q.Text,
	})
	return Outcome{Delta: mastery.Round2(delta), NewGrade: newGrade, Entry: entry}
}
