// Package mastery holds the per-subject grade and the level bands derived from it.
package mastery

import (
	"math"

	"github.com/miascience/quest/internal/model"
)

const (
	MinGrade = 0.0
	MaxGrade = 10.0
	// DefaultGrade is assigned to subjects with no stored grade.
	DefaultGrade = 5.0
)

// Level is a discrete label derived from a grade.
type Level string

const (
	LevelBeginner     Level = "Principiante"
	LevelBasic        Level = "Base"
	LevelIntermediate Level = "Intermedio"
	LevelAdvanced     Level = "Avanzato"
	LevelExpert       Level = "Esperto"
)

// Band is a half-open grade interval [Min, Max).
type Band struct {
	Min   float64
	Max   float64
	Level Level
}

// Bands partitions [0,10]. The top band is closed at 10.
var Bands = []Band{
	{Min: 0, Max: 3, Level: LevelBeginner},
	{Min: 3, Max: 6, Level: LevelBasic},
	{Min: 6, Max: 8, Level: LevelIntermediate},
	{Min: 8, Max: 9, Level: LevelAdvanced},
	{Min: 9, Max: math.Nextafter(MaxGrade, math.Inf(1)), Level: LevelExpert},
}

// LevelFor maps a grade to its level. Values outside every band fall back
// to the lowest level.
func LevelFor(grade float64) Level {
	for _, b := range Bands {
		if grade >= b.Min && grade < b.Max {
			return b.Level
		}
	}
	return Bands[0].Level
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp rounds to two decimals and bounds the result to [MinGrade, MaxGrade].
func Clamp(v float64) float64 {
	return math.Min(MaxGrade, math.Max(MinGrade, Round2(v)))
}

// Tracker holds one grade per subject. It is not safe for concurrent use;
// the engine serializes access.
type Tracker struct {
	grades map[model.Subject]float64
}

// NewTracker returns a tracker with every known subject at DefaultGrade.
func NewTracker() *Tracker {
	t := &Tracker{grades: make(map[model.Subject]float64, len(model.Subjects))}
	for _, s := range model.Subjects {
		t.grades[s] = DefaultGrade
	}
	return t
}

// Restore replaces stored grades with the given ones. Known subjects missing
// from grades keep DefaultGrade; unknown subjects are dropped and every
// restored value is clamped.
func (t *Tracker) Restore(grades map[model.Subject]float64) {
	for _, s := range model.Subjects {
		t.grades[s] = DefaultGrade
	}
	for s, g := range grades {
		if !s.Valid() || math.IsNaN(g) {
			continue
		}
		t.grades[s] = Clamp(g)
	}
}

// Grade returns the stored grade for subject.
func (t *Tracker) Grade(subject model.Subject) float64 {
	if g, ok := t.grades[subject]; ok {
		return g
	}
	return DefaultGrade
}

// ApplyDelta adds delta to the subject's grade, clamps and rounds it, and
// stores the result.
func (t *Tracker) ApplyDelta(subject model.Subject, delta float64) float64 {
	g := Clamp(t.Grade(subject) + delta)
	t.grades[subject] = g
	return g
}

// Snapshot returns a copy of all grades.
func (t *Tracker) Snapshot() map[model.Subject]float64 {
	out := make(map[model.Subject]float64, len(t.grades))
	for s, g := range t.grades {
		out[s] = g
	}
	return out
}
