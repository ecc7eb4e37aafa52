// Package selector picks the next practice question from a pool using the
// answer history.
package selector

import (
	"log/slog"
	"sort"
	"time"

	"github.com/miascience/quest/internal/history"
	"github.com/miascience/quest/internal/model"
)

const (
	// ShortTermWindow is how many recent correct answers form the exclusion set.
	ShortTermWindow = 20
	// Cooldown is the minimum spacing before a correctly answered question returns.
	Cooldown = 7 * 24 * time.Hour
)

const (
	priorityLastCorrect = 0
	priorityUnseen      = 1
	priorityLastWrong   = 2
)

// Selector chooses questions. It reads the history log but never writes it.
type Selector struct {
	log *history.Log
	now func() time.Time
}

// New creates a Selector over log. A nil clock uses time.Now.
func New(log *history.Log, now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{log: log, now: now}
}

type candidate struct {
	q        model.Question
	priority int
	attempts int
}

// SelectNext returns the question to present next, or false when pool is empty.
//
// The short-term exclusion set is built from the last correct answers in every
// subject, not only the one being practiced, so answers in one subject can
// push another subject's questions out of it.
func (s *Selector) SelectNext(pool []model.Question, subject model.Subject) (model.Question, bool) {
	if len(pool) == 0 {
		return model.Question{}, false
	}

	now := s.now()
	excluded := make(map[string]struct{}, ShortTermWindow)
	for _, e := range s.log.RecentCorrect(ShortTermWindow) {
		excluded[e.QuestionID] = struct{}{}
	}

	var eligible, all []candidate
	for _, q := range pool {
		entries := s.log.EntriesFor(q.ID)
		c := candidate{q: q, priority: priorityUnseen, attempts: len(entries)}
		if len(entries) > 0 {
			if entries[0].WasCorrect {
				c.priority = priorityLastCorrect
			} else {
				c.priority = priorityLastWrong
			}
		}
		all = append(all, c)

		if _, ok := excluded[q.ID]; ok {
			continue
		}
		if last, ok := lastCorrect(entries); ok && now.Sub(last) < Cooldown {
			continue
		}
		eligible = append(eligible, c)
	}

	chosen := eligible
	if len(chosen) == 0 {
		chosen = all
	}
	sort.SliceStable(chosen, func(i, j int) bool {
		if chosen[i].priority != chosen[j].priority {
			return chosen[i].priority > chosen[j].priority
		}
		return chosen[i].attempts > chosen[j].attempts
	})

	slog.Debug("selected question",
		"subject", subject,
		"pool", len(pool),
		"eligible", len(eligible),
		"question_id", chosen[0].q.ID,
		"priority", chosen[0].priority,
	)
	return chosen[0].q, true
}

func lastCorrect(entries []model.HistoryEntry) (time.Time, bool) {
	for _, e := range entries {
		if e.WasCorrect {
			return e.Timestamp, true
		}
	}
	return time.Time{}, false
}
