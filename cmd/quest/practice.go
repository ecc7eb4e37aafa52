package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miascience/quest/internal/engine"
	appI18n "github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/practice"
)

func practiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Practice one subject of one week in the terminal",
		Long: `Practice one subject of one week in the terminal.
Type the option number for multiple choice, v/f for true/false, or free text.
An empty line after feedback moves to the next question; "q" quits.`,
		RunE: runPractice,
	}
	f := cmd.Flags()
	f.StringP("week", "w", "", "Week ID (required)")
	f.StringP("subject", "s", "", "Subject: Fisica, Chimica or Tecnica (required)")
	_ = cmd.MarkFlagRequired("week")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runPractice(cmd *cobra.Command, _ []string) error {
	subject := model.Subject(cmd.Flag("subject").Value.String())
	if !subject.Valid() {
		return fmt.Errorf("unknown subject %q", subject)
	}
	week := cmd.Flag("week").Value.String()

	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := appI18n.WithLang(cmd.Context(), a.lang)
	return practiceLoop(ctx, a.engine, week, subject, cmd.InOrStdin(), cmd.OutOrStdout())
}

func practiceLoop(ctx context.Context, e *engine.Engine, week string, subject model.Subject, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	view := e.StartPractice(ctx, week, subject)
	shown := 0

	for {
		for _, n := range view.Notices[shown:] {
			fmt.Fprintln(out, "! "+n.Message)
		}
		shown = len(view.Notices)
		if view.State == practice.StateNoQuestion || view.Question == nil {
			return nil
		}
		printQuestion(out, *view.Question)

		fb, quit, err := answerLoop(ctx, e, *view.Question, reader, out)
		if err != nil || quit {
			return err
		}

		fmt.Fprintln(out, fb.Message)
		fmt.Fprintln(out, fb.Hint)
		fmt.Fprintf(out, "%s (%s)\n", fb.Impact, fb.Level)

		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) == "q" || err != nil {
			return nil
		}
		view = e.NextQuestion(ctx)
	}
}

// answerLoop re-prompts until the answer can be graded or the learner quits.
func answerLoop(ctx context.Context, e *engine.Engine, q engine.QuestionView, reader *bufio.Reader, out io.Writer) (engine.Feedback, bool, error) {
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return engine.Feedback{}, true, nil
		}
		line = strings.TrimSpace(line)
		if line == "q" {
			return engine.Feedback{}, true, nil
		}

		fb, err := e.Submit(ctx, parseAnswer(q.Type, line))
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(out, verr.Message)
			continue
		}
		return fb, false, err
	}
}

func printQuestion(out io.Writer, q engine.QuestionView) {
	fmt.Fprintf(out, "\n[%s] %s\n", q.Difficulty, q.Text)
	switch q.Type {
	case model.TypeMultipleChoice:
		for i, o := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, o)
		}
	case model.TypeTrueFalse:
		fmt.Fprintln(out, "  v) Vero / True")
		fmt.Fprintln(out, "  f) Falso / False")
	}
}

// parseAnswer maps terminal input to an Answer. Unparseable choices leave
// the field unset so grading reports a validation failure.
func parseAnswer(t model.QuestionType, line string) model.Answer {
	switch t {
	case model.TypeMultipleChoice:
		n, err := strconv.Atoi(line)
		if err != nil {
			return model.Answer{}
		}
		idx := n - 1
		return model.Answer{Index: &idx}
	case model.TypeTrueFalse:
		var b bool
		switch strings.ToLower(line) {
		case "v", "vero", "t", "true":
			b = true
		case "f", "falso", "false":
			b = false
		default:
			return model.Answer{}
		}
		return model.Answer{Choice: &b}
	default:
		return model.Answer{Text: line}
	}
}
