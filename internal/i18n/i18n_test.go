package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateItalian(t *testing.T) {
	ctx := initLang(t, "it")

	if got := T(ctx, "FeedbackCorrect"); got != "Corretto!" {
		t.Errorf("T(FeedbackCorrect) = %q, want 'Corretto!'", got)
	}
	if got := T(ctx, "HintReview"); got != "Rivedi il concetto e riprova." {
		t.Errorf("T(HintReview) = %q", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "FeedbackWrong"); got != "Wrong answer." {
		t.Errorf("T(FeedbackWrong) = %q, want 'Wrong answer.'", got)
	}
}

func TestLevelLabels(t *testing.T) {
	ctx := initLang(t, "it")
	if got := Level(ctx, "Intermedio"); got != "Intermedio" {
		t.Errorf("Level(Intermedio) = %q", got)
	}

	en := WithLang(context.Background(), "en")
	if got := Level(en, "Intermedio"); got != "Intermediate" {
		t.Errorf("Level(Intermedio) in en = %q, want Intermediate", got)
	}
	if got := Level(en, "Sconosciuto"); got != "Sconosciuto" {
		t.Errorf("unknown level should pass through, got %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "it")

	if got := Tp(ctx, "QuestionsAnswered", 1); got != "1 domanda" {
		t.Errorf("Tp(1) = %q, want '1 domanda'", got)
	}
	if got := Tp(ctx, "QuestionsAnswered", 5); got != "5 domande" {
		t.Errorf("Tp(5) = %q, want '5 domande'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "it")

	got := Td(ctx, "NoQuestions", map[string]any{"Subject": "Fisica"})
	if got != "Nessuna domanda disponibile per Fisica." {
		t.Errorf("Td(NoQuestions) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "it")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMiddlewareHonorsQueryLang(t *testing.T) {
	initLang(t, "it")

	var got string
	h := Middleware("it")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "FeedbackCorrect")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if got != "Correct!" {
		t.Errorf("with lang=en got %q", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Corretto!" {
		t.Errorf("default got %q", got)
	}
}
