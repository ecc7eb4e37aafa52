// Package content loads the read-only study plan and question groups.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/miascience/quest/internal/model"
)

// ErrLoad wraps every failure to obtain content.
var ErrLoad = errors.New("content load failed")

// Catalog indexes weeks and question groups. It is immutable after Load.
type Catalog struct {
	weeks  []model.Week
	groups []model.QuestionGroup
}

// NewCatalog builds a catalog from already-decoded content.
func NewCatalog(weeks []model.Week, groups []model.QuestionGroup) *Catalog {
	return &Catalog{weeks: weeks, groups: groups}
}

// Source is a file path or an http(s) URL.
type Source string

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Load fetches both sources concurrently. Either failing fails the whole load.
func Load(ctx context.Context, weeksSrc, questionsSrc Source) (*Catalog, error) {
	var (
		weeks  []model.Week
		groups []model.QuestionGroup
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fetchJSON(ctx, weeksSrc, &weeks)
	})
	g.Go(func() error {
		return fetchJSON(ctx, questionsSrc, &groups)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Info("content loaded", "weeks", len(weeks), "groups", len(groups))
	return NewCatalog(weeks, groups), nil
}

func fetchJSON(ctx context.Context, src Source, v any) error {
	data, err := read(ctx, src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLoad, src, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrLoad, src, err)
	}
	return nil
}

func read(ctx context.Context, src Source) ([]byte, error) {
	s := string(src)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return os.ReadFile(s)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Weeks returns all weeks in authored order.
func (c *Catalog) Weeks() []model.Week {
	return c.weeks
}

// Week finds a week by ID.
func (c *Catalog) Week(id string) (model.Week, bool) {
	for _, w := range c.weeks {
		if w.ID == id {
			return w, true
		}
	}
	return model.Week{}, false
}

// WeeksWithSubject returns the weeks that have a section for subject.
// An empty subject matches every week.
func (c *Catalog) WeeksWithSubject(subject model.Subject) []model.Week {
	if subject == "" {
		return c.weeks
	}
	var out []model.Week
	for _, w := range c.weeks {
		for _, s := range w.Sections {
			if s.Subject == subject {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

// Subjects returns the distinct subjects of a week in section order.
func Subjects(w model.Week) []model.Subject {
	seen := make(map[model.Subject]bool)
	var out []model.Subject
	for _, s := range w.Sections {
		if !seen[s.Subject] {
			seen[s.Subject] = true
			out = append(out, s.Subject)
		}
	}
	return out
}

// Group returns the question group for (weekID, subject).
func (c *Catalog) Group(weekID string, subject model.Subject) (model.QuestionGroup, bool) {
	for _, g := range c.groups {
		if g.WeekID == weekID && g.Subject == subject {
			return g, true
		}
	}
	return model.QuestionGroup{}, false
}

// Question finds a question by ID within a (week, subject) group.
func (c *Catalog) Question(weekID string, subject model.Subject, id string) (model.Question, bool) {
	g, ok := c.Group(weekID, subject)
	if !ok {
		return model.Question{}, false
	}
	for _, q := range g.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}
