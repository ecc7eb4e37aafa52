package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/miascience/quest/internal/content"
	"github.com/miascience/quest/internal/engine"
	appI18n "github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("it"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name      string
		typ       model.QuestionType
		line      string
		wantIndex int
		wantBool  *bool
		wantText  string
		wantEmpty bool
	}{
		{name: "mcq number", typ: model.TypeMultipleChoice, line: "2", wantIndex: 1},
		{name: "mcq not a number", typ: model.TypeMultipleChoice, line: "b", wantEmpty: true},
		{name: "tf vero", typ: model.TypeTrueFalse, line: "Vero", wantBool: boolPtr(true)},
		{name: "tf f", typ: model.TypeTrueFalse, line: "f", wantBool: boolPtr(false)},
		{name: "tf garbage", typ: model.TypeTrueFalse, line: "forse", wantEmpty: true},
		{name: "open", typ: model.TypeOpen, line: "ossigeno", wantText: "ossigeno"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := parseAnswer(tt.typ, tt.line)
			switch {
			case tt.wantEmpty:
				if a.Index != nil || a.Choice != nil || a.Text != "" {
					t.Errorf("answer = %+v, want empty", a)
				}
			case tt.wantBool != nil:
				if a.Choice == nil || *a.Choice != *tt.wantBool {
					t.Errorf("choice = %v, want %v", a.Choice, *tt.wantBool)
				}
			case tt.typ == model.TypeMultipleChoice:
				if a.Index == nil || *a.Index != tt.wantIndex {
					t.Errorf("index = %v, want %d", a.Index, tt.wantIndex)
				}
			default:
				if a.Text != tt.wantText {
					t.Errorf("text = %q, want %q", a.Text, tt.wantText)
				}
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestPracticeLoop(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	groups := []model.QuestionGroup{{
		WeekID:  "w1",
		Subject: model.SubjectChemistry,
		Questions: []model.Question{
			{ID: "c1", Type: model.TypeTrueFalse, Weight: 10, Text: "L'acqua bolle a 100 °C.", CorrectAnswer: "true"},
		},
	}}
	e := engine.New(db, content.NewCatalog(nil, groups), engine.Options{})
	e.Load(context.Background())

	// invalid input, then a correct answer, then quit.
	in := strings.NewReader("x\nv\nq\n")
	var out strings.Builder
	if err := practiceLoop(context.Background(), e, "w1", model.SubjectChemistry, in, &out); err != nil {
		t.Fatalf("practiceLoop: %v", err)
	}

	got := out.String()
	for _, want := range []string{"L'acqua bolle", "Seleziona Vero o Falso.", "Corretto!", "Chimica: +1.50 punti (Intermedio)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if g := e.Grade(model.SubjectChemistry); g != 6.5 {
		t.Errorf("grade = %v, want 6.5", g)
	}
}

func TestPracticeLoopNoQuestions(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	e := engine.New(db, content.NewCatalog(nil, nil), engine.Options{})

	var out strings.Builder
	if err := practiceLoop(context.Background(), e, "w1", model.SubjectTechnology, strings.NewReader(""), &out); err != nil {
		t.Fatalf("practiceLoop: %v", err)
	}
	if !strings.Contains(out.String(), "Nessuna domanda disponibile per Tecnica.") {
		t.Errorf("output = %q", out.String())
	}
}
