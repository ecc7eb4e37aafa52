package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/miascience/quest/internal/model"
)

func TestBuildHintSystemPrompt(t *testing.T) {
	t.Run("multiple choice", func(t *testing.T) {
		q := model.Question{
			Type:         model.TypeMultipleChoice,
			Text:         "Qual è l'unità della forza?",
			Options:      []string{"Joule", "Newton", "Watt", "Pascal"},
			CorrectIndex: 1,
		}
		prompt := buildHintSystemPrompt(q, "it")
		if !strings.Contains(prompt, q.Text) {
			t.Error("prompt should contain question text")
		}
		if !strings.Contains(prompt, "* 2. Newton") {
			t.Error("prompt should mark the correct option")
		}
		if !strings.Contains(prompt, `"it"`) {
			t.Error("prompt should name the language")
		}
	})

	t.Run("open", func(t *testing.T) {
		q := model.Question{Type: model.TypeOpen, Text: "Quale gas respiriamo?", CorrectAnswer: "ossigeno"}
		prompt := buildHintSystemPrompt(q, "en")
		if !strings.Contains(prompt, "EXPECTED ANSWER (not shown to student): ossigeno") {
			t.Error("prompt should contain expected answer")
		}
		if strings.Contains(prompt, "OPTIONS:") {
			t.Error("open question prompt should not list options")
		}
	})
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"valid", `{"hint":" L'aria contiene ossigeno. "}`, "L'aria contiene ossigeno.", false},
		{"empty hint", `{"hint":""}`, "", true},
		{"not json", `ossigeno`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHint(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHintAgainstFakeServer(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"hint\":\"Pensa a cosa respiriamo.\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test", "tutor-small", "it")
	hint, err := c.Hint(context.Background(), model.Question{Type: model.TypeOpen, Text: "Gas?", CorrectAnswer: "ossigeno"}, "azoto")
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if hint != "Pensa a cosa respiriamo." {
		t.Errorf("hint = %q", hint)
	}
	if gotModel != "tutor-small" {
		t.Errorf("model = %q", gotModel)
	}
}
