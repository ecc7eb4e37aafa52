package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/miascience/quest/internal/model"
)

const weeksJSON = `[
  {"id":"w1","weekNumber":1,"title":"Misure","month":"Settembre","sections":[
    {"subject":"Fisica","topic":"Misure e strumenti","objectives":["a","b"]},
    {"subject":"Chimica","topic":"Stati della materia","objectives":["c"]},
    {"subject":"Fisica","topic":"Errori","objectives":[]}
  ]},
  {"id":"w2","weekNumber":2,"title":"Materiali","month":"Ottobre","sections":[
    {"subject":"Tecnica","topic":"Materiali e proprietà","objectives":["d"]}
  ]}
]`

const questionsJSON = `[
  {"weekId":"w1","subject":"Fisica","questions":[
    {"id":"f1","type":"mcq","difficulty":"easy","weight":10,"question":"Forza?","options":["J","N","W","Pa"],"correctIndex":1},
    {"id":"f2","type":"truefalse","difficulty":"medium","weight":8,"question":"g vale 9.8?","correctAnswer":true}
  ]},
  {"weekId":"w1","subject":"Chimica","questions":[]}
]`

func writeFile(t *testing.T, dir, name, data string) Source {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return Source(p)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	cat, err := Load(context.Background(),
		writeFile(t, dir, "weeks.json", weeksJSON),
		writeFile(t, dir, "questions.json", questionsJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cat.Weeks()) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(cat.Weeks()))
	}
	g, ok := cat.Group("w1", model.SubjectPhysics)
	if !ok || len(g.Questions) != 2 {
		t.Fatalf("unexpected group: %+v ok=%v", g, ok)
	}
	if g.Questions[1].CorrectAnswer != "true" {
		t.Errorf("CorrectAnswer = %q, want true", g.Questions[1].CorrectAnswer)
	}
	if _, ok := cat.Group("w2", model.SubjectPhysics); ok {
		t.Error("expected no group for w2/Fisica")
	}
	if q, ok := cat.Question("w1", model.SubjectPhysics, "f2"); !ok || q.Weight != 8 {
		t.Errorf("Question lookup failed: %+v", q)
	}
}

func TestLoadFromHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/weeks.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(weeksJSON))
	})
	mux.HandleFunc("/data/questions.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(questionsJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat, err := Load(context.Background(),
		Source(srv.URL+"/data/weeks.json"),
		Source(srv.URL+"/data/questions.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cat.Week("w2"); !ok {
		t.Error("expected week w2")
	}
}

func TestLoadFailsWhenEitherSourceFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/weeks.json" {
			w.Write([]byte(weeksJSON))
			return
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	dir := t.TempDir()

	tests := []struct {
		name      string
		weeks     Source
		questions Source
	}{
		{"questions 404", Source(srv.URL + "/weeks.json"), Source(srv.URL + "/questions.json")},
		{"weeks missing file", Source(filepath.Join(dir, "nope.json")), writeFile(t, dir, "q.json", questionsJSON)},
		{"weeks unparseable", writeFile(t, dir, "bad.json", "{not json"), writeFile(t, dir, "q2.json", questionsJSON)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Load(context.Background(), tt.weeks, tt.questions)
			if !errors.Is(err, ErrLoad) {
				t.Errorf("err = %v, want ErrLoad", err)
			}
			if cat != nil {
				t.Error("no partial catalog may be returned")
			}
		})
	}
}

func TestWeeksWithSubjectAndSubjects(t *testing.T) {
	dir := t.TempDir()
	cat, err := Load(context.Background(),
		writeFile(t, dir, "weeks.json", weeksJSON),
		writeFile(t, dir, "questions.json", questionsJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cat.WeeksWithSubject(model.SubjectTechnology); len(got) != 1 || got[0].ID != "w2" {
		t.Errorf("WeeksWithSubject(Tecnica) = %+v", got)
	}
	if got := cat.WeeksWithSubject(""); len(got) != 2 {
		t.Errorf("WeeksWithSubject(all) returned %d weeks", len(got))
	}

	w1, _ := cat.Week("w1")
	subjects := Subjects(w1)
	if len(subjects) != 2 || subjects[0] != model.SubjectPhysics || subjects[1] != model.SubjectChemistry {
		t.Errorf("Subjects(w1) = %v", subjects)
	}
}
