// Package history keeps the append-only log of graded answers.
package history

import (
	"sort"
	"time"

	"github.com/miascience/quest/internal/model"
)

// Retention is the number of most recent entries kept when the log is persisted.
const Retention = 200

// StatsWindow is the trailing window used for subject accuracy.
const StatsWindow = 30 * 24 * time.Hour

// Log is an append-only sequence of history entries in insertion order.
// It is not safe for concurrent use.
type Log struct {
	entries []model.HistoryEntry
	now     func() time.Time
}

// New creates an empty log. A nil clock uses time.Now.
func New(now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{now: now}
}

// Restore replaces the log contents. Used once when loading persisted state.
func (l *Log) Restore(entries []model.HistoryEntry) {
	l.entries = append([]model.HistoryEntry(nil), entries...)
}

// Append stamps e with the current time and adds it to the log.
func (l *Log) Append(e model.HistoryEntry) model.HistoryEntry {
	e.Timestamp = l.now().UTC()
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of entries in memory.
func (l *Log) Len() int {
	return len(l.entries)
}

// All returns a copy of every entry in insertion order.
func (l *Log) All() []model.HistoryEntry {
	return append([]model.HistoryEntry(nil), l.entries...)
}

// Retained returns the most recent n entries in insertion order.
func (l *Log) Retained(n int) []model.HistoryEntry {
	if len(l.entries) <= n {
		return l.All()
	}
	return append([]model.HistoryEntry(nil), l.entries[len(l.entries)-n:]...)
}

// EntriesFor returns the entries for questionID, most recent first.
func (l *Log) EntriesFor(questionID string) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range l.entries {
		if e.QuestionID == questionID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out
}

// RecentCorrect returns up to limit correct entries across all subjects,
// most recent first.
func (l *Log) RecentCorrect(limit int) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range l.entries {
		if e.WasCorrect {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Recent returns the last n appended entries, most recent first.
func (l *Log) Recent(n int) []model.HistoryEntry {
	out := l.Retained(n)
	sortNewestFirst(out)
	return out
}

// SubjectStats computes accuracy over entries inside the trailing window and
// the all-time answered count. An empty window yields 0% accuracy.
func (l *Log) SubjectStats(subject model.Subject, window time.Duration) model.SubjectStats {
	since := l.now().Add(-window)
	var total, correct, answered int
	for _, e := range l.entries {
		if e.Subject != subject {
			continue
		}
		answered++
		if e.Timestamp.Before(since) {
			continue
		}
		total++
		if e.WasCorrect {
			correct++
		}
	}
	return model.SubjectStats{
		Accuracy:      percent(correct, max(total, 1)),
		AnsweredCount: answered,
	}
}

// Overview aggregates the whole in-memory log.
func (l *Log) Overview() model.Overview {
	o := model.Overview{Total: len(l.entries)}
	for _, e := range l.entries {
		if e.WasCorrect {
			o.Correct++
		}
	}
	if o.Total > 0 {
		o.Percent = percent(o.Correct, o.Total)
	}
	return o
}

func percent(part, whole int) int {
	return int(float64(part)/float64(whole)*100 + 0.5)
}

func sortNewestFirst(entries []model.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
