package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Subject is one of the fixed practice domains.
type Subject string

const (
	SubjectPhysics    Subject = "Fisica"
	SubjectChemistry  Subject = "Chimica"
	SubjectTechnology Subject = "Tecnica"
)

// Subjects lists every subject in display order.
var Subjects = []Subject{SubjectPhysics, SubjectChemistry, SubjectTechnology}

// Valid reports whether s is one of the known subjects.
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// QuestionType selects how an answer is evaluated.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "mcq"
	TypeTrueFalse      QuestionType = "truefalse"
	TypeOpen           QuestionType = "open"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MinOptions is the number of options a multiple-choice question must offer.
const MinOptions = 4

// Question is a single practice item. Questions are read-only once loaded.
type Question struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	Difficulty   Difficulty   `json:"difficulty"`
	Weight       float64      `json:"weight"`
	Text         string       `json:"question"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"correctIndex"`
	// CorrectAnswer holds the expected answer in text form: "true"/"false"
	// for true/false questions, the expected substring for open questions.
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// UnmarshalJSON accepts correctAnswer as a string, a boolean or a number.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	var aux struct {
		plain
		CorrectAnswer json.RawMessage `json:"correctAnswer"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*q = Question(aux.plain)
	q.CorrectAnswer = ""
	if len(aux.CorrectAnswer) == 0 || string(aux.CorrectAnswer) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(aux.CorrectAnswer, &v); err != nil {
		return fmt.Errorf("question %s: correctAnswer: %w", q.ID, err)
	}
	switch t := v.(type) {
	case string:
		q.CorrectAnswer = t
	case bool:
		q.CorrectAnswer = strconv.FormatBool(t)
	case float64:
		q.CorrectAnswer = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Errorf("question %s: unsupported correctAnswer %s", q.ID, aux.CorrectAnswer)
	}
	return nil
}

// QuestionGroup holds the questions authored for one (week, subject) pair.
type QuestionGroup struct {
	WeekID    string     `json:"weekId"`
	Subject   Subject    `json:"subject"`
	Questions []Question `json:"questions"`
}

// Section is one subject block inside a week.
type Section struct {
	Subject    Subject  `json:"subject"`
	Topic      string   `json:"topic"`
	Objectives []string `json:"objectives"`
}

// Week is a unit of the study plan.
type Week struct {
	ID         string    `json:"id"`
	WeekNumber int       `json:"weekNumber"`
	Title      string    `json:"title"`
	Month      string    `json:"month"`
	Sections   []Section `json:"sections"`
}

// HistoryEntry records one graded answer. Entries are never modified.
type HistoryEntry struct {
	QuestionID   string     `json:"questionId"`
	Subject      Subject    `json:"subject"`
	Difficulty   Difficulty `json:"difficulty"`
	WasCorrect   bool       `json:"wasCorrect"`
	UserAnswer   string     `json:"userAnswer"`
	Timestamp    time.Time  `json:"timestamp"`
	GradeDelta   float64    `json:"gradeDelta"`
	QuestionText string     `json:"questionText"`
}

// Answer is a submission as typed by the learner. Exactly one field is
// meaningful, depending on the question type.
type Answer struct {
	Index  *int   `json:"index,omitempty"`
	Choice *bool  `json:"choice,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Evaluation is the result of checking an answer.
type Evaluation struct {
	IsCorrect        bool   `json:"isCorrect"`
	NormalizedAnswer string `json:"normalizedAnswer"`
}

// SubjectStats summarizes recent performance for one subject.
type SubjectStats struct {
	Accuracy      int `json:"accuracy"` // percent over the trailing window
	AnsweredCount int `json:"answeredCount"`
}
