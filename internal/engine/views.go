package engine

import (
	"context"
	"math"

	"github.com/miascience/quest/internal/history"
	"github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/mastery"
	"github.com/miascience/quest/internal/model"
)

var missionTopics = map[model.Subject]string{
	model.SubjectPhysics:    "Misure e strumenti",
	model.SubjectChemistry:  "Stati della materia",
	model.SubjectTechnology: "Materiali e proprietà",
}

// Dashboard returns one progress card per subject.
func (e *Engine) Dashboard(ctx context.Context) []model.SubjectProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dashboardLocked(ctx)
}

func (e *Engine) dashboardLocked(ctx context.Context) []model.SubjectProgress {
	cards := make([]model.SubjectProgress, 0, len(model.Subjects))
	for _, s := range model.Subjects {
		g := e.tracker.Grade(s)
		stats := e.log.SubjectStats(s, history.StatsWindow)
		cards = append(cards, model.SubjectProgress{
			Subject:         s,
			Grade:           g,
			Level:           i18n.Level(ctx, string(mastery.LevelFor(g))),
			ProgressPercent: int(math.Round(g / mastery.MaxGrade * 100)),
			Accuracy:        stats.Accuracy,
			Answered:        stats.AnsweredCount,
		})
	}
	return cards
}

// Missions suggests this week's practice, weakest subject first.
func (e *Engine) Missions(ctx context.Context) []string {
	e.mu.Lock()
	subjects := e.subjectsByWeakness()
	e.mu.Unlock()

	data := func(s model.Subject) map[string]any {
		return map[string]any{"Subject": s, "Topic": missionTopics[s]}
	}
	return []string{
		i18n.Td(ctx, "MissionEasy", data(subjects[0])),
		i18n.Td(ctx, "MissionMedium", data(subjects[1])),
		i18n.Td(ctx, "MissionHard", data(subjects[2])),
	}
}

// Export snapshots grades, the in-memory history and the dashboard.
func (e *Engine) Export(ctx context.Context) model.ProgressExport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.ProgressExport{
		ExportedAt: e.now().UTC(),
		Grades:     e.tracker.Snapshot(),
		Subjects:   e.dashboardLocked(ctx),
		History:    e.log.All(),
		Overview:   e.log.Overview(),
	}
}
