package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miascience/quest/internal/content"
	"github.com/miascience/quest/internal/engine"
	"github.com/miascience/quest/internal/handler"
	appI18n "github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/llm"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/store"
)

func main() {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quest",
		Short: "Adaptive science practice for Fisica, Chimica and Tecnica",
	}

	pf := root.PersistentFlags()
	pf.String("weeks", "data/weeks.json", "Study plan JSON (file path or http(s) URL)")
	pf.String("questions", "data/questions.json", "Question groups JSON (file path or http(s) URL)")
	pf.String("store", "sqlite", "Persistence backend (sqlite, redis)")
	pf.String("db", "quest.db", "SQLite database path")
	pf.String("redis-addr", "localhost:6379", "Redis address")
	pf.String("redis-prefix", "quest:", "Redis key prefix")
	pf.StringP("lang", "l", "it", "UI language (it, en)")
	pf.String("llm-url", "", "OpenAI-compatible API base URL (empty disables generated hints)")
	pf.String("llm-key", "ollama", "API key for LLM")
	pf.String("llm-model", "llama3.2", "LLM model name")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	serve := serveCmd()
	root.AddCommand(serve, practiceCmd(), statsCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP JSON API",
		RunE:  runServe,
	}
	cmd.Flags().StringP("addr", "a", ":8080", "HTTP listen address")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show grades, levels and this week's missions",
		RunE:  runStats,
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export grades and history as JSON",
		RunE:  runExport,
	}
	cmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quest")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quest")
	v.AddConfigPath("/etc/quest")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// app is everything a command needs once configuration is resolved.
type app struct {
	engine *engine.Engine
	blobs  store.Blobs
	config *viper.Viper
	lang   string
}

func (a *app) Close() {
	if err := a.blobs.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}

// setup loads content, opens the store and restores the learner state.
// Content failures are fatal; persistence read failures are not.
func setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	v := viperForCmd(cmd)
	setupLogging(v)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	catalog, err := content.Load(ctx, content.Source(v.GetString("weeks")), content.Source(v.GetString("questions")))
	if err != nil {
		slog.Error(appI18n.T(ctx, "LoadError"), "error", err)
		return nil, err
	}

	blobs, err := openStore(ctx, v)
	if err != nil {
		return nil, err
	}

	opts := engine.Options{}
	if url := v.GetString("llm-url"); url != "" {
		opts.Hinter = llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), lang)
		slog.Info("hint generation enabled", "url", url, "model", v.GetString("llm-model"))
	}

	e := engine.New(blobs, catalog, opts)
	e.Load(ctx)
	return &app{engine: e, blobs: blobs, config: v, lang: lang}, nil
}

func openStore(ctx context.Context, v *viper.Viper) (store.Blobs, error) {
	switch backend := strings.ToLower(v.GetString("store")); backend {
	case "sqlite", "":
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		slog.Info("using sqlite store", "path", v.GetString("db"))
		return db, nil
	case "redis":
		r, err := store.NewRedis(ctx, v.GetString("redis-addr"), v.GetString("redis-prefix"))
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		slog.Info("using redis store", "addr", v.GetString("redis-addr"), "prefix", v.GetString("redis-prefix"))
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite or redis)", backend)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	v := a.config

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(a.lang))
	handler.New(a.engine).Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", a.lang,
		"store", v.GetString("store"),
		"weeks", v.GetString("weeks"),
		"questions", v.GetString("questions"),
	)
	return http.ListenAndServe(addr, r)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := appI18n.WithLang(cmd.Context(), a.lang)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, appI18n.T(ctx, "AppTitle"))
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for _, card := range a.engine.Dashboard(ctx) {
		fmt.Fprintf(out, "%-8s %5.2f  %-13s %3d%%  acc %3d%%  %s\n",
			card.Subject, card.Grade, card.Level, card.ProgressPercent, card.Accuracy,
			appI18n.Tp(ctx, "QuestionsAnswered", card.Answered))
	}

	ov := a.engine.Overview()
	fmt.Fprintf(out, "\n%d/%d (%d%%)\n\n", ov.Correct, ov.Total, ov.Percent)
	for _, m := range a.engine.Missions(ctx) {
		fmt.Fprintln(out, "- "+m)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	v := a.config

	export := a.engine.Export(appI18n.WithLang(cmd.Context(), a.lang))
	if export.History == nil {
		export.History = []model.HistoryEntry{}
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	slog.Info("exported progress", "entries", len(export.History), "output", outPath)
	return nil
}
