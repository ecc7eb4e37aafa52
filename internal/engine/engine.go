// Package engine owns the learner state (grades, history, current practice
// session) and is the only entry point the presentation layer talks to.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/miascience/quest/internal/content"
	"github.com/miascience/quest/internal/grading"
	"github.com/miascience/quest/internal/history"
	"github.com/miascience/quest/internal/mastery"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/practice"
	"github.com/miascience/quest/internal/selector"
	"github.com/miascience/quest/internal/store"
)

// Storage keys.
const (
	KeyGrades  = "grades"
	KeyHistory = "history"
)

const hintTimeout = 10 * time.Second

// Hinter produces an explanation for a wrong answer.
type Hinter interface {
	Hint(ctx context.Context, q model.Question, userAnswer string) (string, error)
}

// Options tune an Engine. Zero values are valid.
type Options struct {
	Now    func() time.Time
	Hinter Hinter
}

// Engine serializes every read and write of the learner state.
type Engine struct {
	mu sync.Mutex

	blobs   store.Blobs
	catalog *content.Catalog
	now     func() time.Time
	hinter  Hinter

	tracker *mastery.Tracker
	log     *history.Log
	grader  *grading.Engine
	sel     *selector.Selector
	session *practice.Session
}

// New builds an engine with default state. Call Load to restore persisted state.
func New(blobs store.Blobs, catalog *content.Catalog, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tracker := mastery.NewTracker()
	log := history.New(now)
	sel := selector.New(log, now)
	e := &Engine{
		blobs:   blobs,
		catalog: catalog,
		now:     now,
		hinter:  opts.Hinter,
		tracker: tracker,
		log:     log,
		grader:  grading.NewEngine(tracker, log),
		sel:     sel,
	}
	e.session = practice.New(sel, recorder{e})
	return e
}

type historyBlob struct {
	History []model.HistoryEntry `json:"history"`
}

// Load restores grades and history. Each key fails independently: an
// unreadable or corrupt value is logged and replaced by its default.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stored map[model.Subject]*float64
	if err := e.readJSON(ctx, KeyGrades, &stored); err != nil {
		slog.Warn("cannot read stored grades, using defaults", "key", KeyGrades, "error", err)
		stored = nil
	}
	grades := make(map[model.Subject]float64, len(stored))
	for s, g := range stored {
		// null counts as missing, not as zero.
		if g != nil {
			grades[s] = *g
		}
	}
	e.tracker.Restore(grades)

	var hb historyBlob
	if err := e.readJSON(ctx, KeyHistory, &hb); err != nil {
		slog.Warn("cannot read stored history, starting empty", "key", KeyHistory, "error", err)
		hb.History = nil
	}
	e.log.Restore(hb.History)

	slog.Info("learner state loaded", "history", e.log.Len())
}

func (e *Engine) readJSON(ctx context.Context, key string, v any) error {
	data, err := e.blobs.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// persist writes grades and the retained history together. Failures are
// logged; the in-memory state stays authoritative.
func (e *Engine) persist(ctx context.Context) {
	grades, err := json.Marshal(e.tracker.Snapshot())
	if err != nil {
		slog.Warn("cannot encode grades", "error", err)
		return
	}
	hist, err := json.Marshal(historyBlob{History: e.log.Retained(history.Retention)})
	if err != nil {
		slog.Warn("cannot encode history", "error", err)
		return
	}
	if err := e.blobs.PutAll(ctx, map[string][]byte{KeyGrades: grades, KeyHistory: hist}); err != nil {
		slog.Warn("cannot save learner state", "error", err)
	}
}

// recorder lets the practice session record outcomes. It runs while the
// engine lock is already held by Submit.
type recorder struct {
	e *Engine
}

func (r recorder) Record(ctx context.Context, subject model.Subject, q model.Question, eval model.Evaluation) grading.Outcome {
	out := r.e.grader.RecordOutcome(subject, q, eval)
	r.e.persist(ctx)
	return out
}

// Catalog returns the loaded content.
func (e *Engine) Catalog() *content.Catalog {
	return e.catalog
}

// Grade returns the subject's grade.
func (e *Engine) Grade(subject model.Subject) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Grade(subject)
}

// Level returns the subject's level.
func (e *Engine) Level(subject model.Subject) mastery.Level {
	return mastery.LevelFor(e.Grade(subject))
}

// Stats returns the 30-day accuracy and all-time answered count for subject.
func (e *Engine) Stats(subject model.Subject) model.SubjectStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.SubjectStats(subject, history.StatsWindow)
}

// RecentHistory returns the last n entries, most recent first.
func (e *Engine) RecentHistory(n int) []model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Recent(n)
}

// Overview aggregates the whole log.
func (e *Engine) Overview() model.Overview {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Overview()
}

// Grades returns a copy of every subject grade.
func (e *Engine) Grades() map[model.Subject]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Snapshot()
}

// History returns every in-memory entry in insertion order.
func (e *Engine) History() []model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.All()
}

// subjectsByWeakness orders subjects by ascending grade, ties in display order.
func (e *Engine) subjectsByWeakness() []model.Subject {
	subjects := append([]model.Subject(nil), model.Subjects...)
	sort.SliceStable(subjects, func(i, j int) bool {
		return e.tracker.Grade(subjects[i]) < e.tracker.Grade(subjects[j])
	})
	return subjects
}
