package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/miascience/quest/internal/grading"
	"github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/mastery"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/practice"
)

// QuestionView is a question as shown to the learner, without its answer.
type QuestionView struct {
	ID         string             `json:"id"`
	Type       model.QuestionType `json:"type"`
	Difficulty model.Difficulty   `json:"difficulty"`
	Text       string             `json:"question"`
	Options    []string           `json:"options,omitempty"`
}

// NoticeView is a localized content notice.
type NoticeView struct {
	practice.Notice
	Message string `json:"message"`
}

// SessionView is the current practice state for rendering.
type SessionView struct {
	WeekID   string         `json:"weekId"`
	Subject  model.Subject  `json:"subject"`
	State    practice.State `json:"state"`
	Question *QuestionView  `json:"question,omitempty"`
	Notices  []NoticeView   `json:"notices,omitempty"`
}

// Feedback is shown after an answer is graded.
type Feedback struct {
	Correct  bool               `json:"correct"`
	Message  string             `json:"message"`
	Hint     string             `json:"hint"`
	Impact   string             `json:"impact"`
	Delta    float64            `json:"delta"`
	NewGrade float64            `json:"newGrade"`
	Level    string             `json:"level"`
	Entry    model.HistoryEntry `json:"entry"`
}

// ValidationError carries the localized re-prompt for an ungradable submission.
type ValidationError struct {
	Err     error
	Message string
}

func (v *ValidationError) Error() string { return v.Err.Error() }

func (v *ValidationError) Unwrap() error { return v.Err }

// StartPractice replaces the current session with a new one for (weekID, subject).
func (e *Engine) StartPractice(ctx context.Context, weekID string, subject model.Subject) SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session = practice.New(e.sel, recorder{e})
	e.session.Start(e.catalog, weekID, subject)
	slog.Info("practice started", "week", weekID, "subject", subject, "pool", len(e.session.Pool))
	return e.viewLocked(ctx)
}

// NextQuestion advances the current session over the same pool.
func (e *Engine) NextQuestion(ctx context.Context) SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State() != practice.StateIdle {
		e.session.Next()
	}
	return e.viewLocked(ctx)
}

// Session returns the current practice state.
func (e *Engine) Session(ctx context.Context) SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(ctx)
}

// Submit grades answer for the current question. Validation failures are
// returned as *ValidationError and change nothing.
func (e *Engine) Submit(ctx context.Context, answer model.Answer) (Feedback, error) {
	e.mu.Lock()
	q, _ := e.session.Current()
	subject := e.session.Subject
	out, eval, err := e.session.Submit(ctx, answer)
	e.mu.Unlock()

	if errors.Is(err, grading.ErrValidation) {
		return Feedback{}, &ValidationError{Err: err, Message: validationMessage(ctx, q, err)}
	}
	if err != nil {
		return Feedback{}, err
	}

	fb := Feedback{
		Correct:  eval.IsCorrect,
		Delta:    out.Delta,
		NewGrade: out.NewGrade,
		Level:    i18n.Level(ctx, string(mastery.LevelFor(out.NewGrade))),
		Entry:    out.Entry,
		Impact: i18n.Td(ctx, "Impact", map[string]any{
			"Subject": subject,
			"Delta":   fmt.Sprintf("%+.2f", out.Delta),
		}),
	}
	if eval.IsCorrect {
		fb.Message = i18n.T(ctx, "FeedbackCorrect")
		fb.Hint = i18n.T(ctx, "HintCorrect")
	} else {
		fb.Message = i18n.T(ctx, "FeedbackWrong")
		fb.Hint = e.remedialHint(ctx, q, eval.NormalizedAnswer)
	}
	return fb, nil
}

func (e *Engine) remedialHint(ctx context.Context, q model.Question, answer string) string {
	if q.Explanation != "" {
		return q.Explanation
	}
	if e.hinter != nil {
		hctx, cancel := context.WithTimeout(ctx, hintTimeout)
		defer cancel()
		hint, err := e.hinter.Hint(hctx, q, answer)
		if err == nil {
			return hint
		}
		slog.Warn("hint generation failed", "question_id", q.ID, "error", err)
	}
	return i18n.T(ctx, "HintReview")
}

func validationMessage(ctx context.Context, q model.Question, err error) string {
	switch {
	case errors.Is(err, grading.ErrEmptyAnswer):
		return i18n.T(ctx, "EnterAnswer")
	case q.Type == model.TypeTrueFalse:
		return i18n.T(ctx, "SelectTrueFalse")
	default:
		return i18n.T(ctx, "SelectOption")
	}
}

func (e *Engine) viewLocked(ctx context.Context) SessionView {
	v := SessionView{
		WeekID:  e.session.WeekID,
		Subject: e.session.Subject,
		State:   e.session.State(),
	}
	if q, ok := e.session.Current(); ok {
		v.Question = &QuestionView{
			ID:         q.ID,
			Type:       q.Type,
			Difficulty: q.Difficulty,
			Text:       q.Text,
			Options:    q.Options,
		}
	}
	for _, n := range e.session.Notices() {
		v.Notices = append(v.Notices, NoticeView{Notice: n, Message: noticeMessage(ctx, n, v.Subject)})
	}
	return v
}

func noticeMessage(ctx context.Context, n practice.Notice, subject model.Subject) string {
	switch n.Code {
	case practice.NoticeNoQuestions:
		return i18n.Td(ctx, "NoQuestions", map[string]any{"Subject": subject})
	case practice.NoticeTooFewOptions:
		return i18n.T(ctx, "NeedFourOptions")
	default:
		return i18n.T(ctx, "NoQuestionFound")
	}
}
