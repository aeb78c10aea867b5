package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"task-tracker/internal/app"
	"task-tracker/internal/config"
	"task-tracker/internal/menu"
	"task-tracker/pkg/logger"
)

func main() {
	configPath := flag.StringP("config", "c", "", "config file (hujson); defaults to "+config.DefaultFile+" if present")
	dbPath := flag.String("db", "", "SQLite database path (overrides DATABASE_PATH)")
	logLevel := flag.String("log-level", "warn", "log level for diagnostics written to stderr")
	flag.Parse()

	config.LoadEnvFile(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	// Diagnostics go to stderr so they do not interleave with the menu.
	logger.Setup(os.Stderr, *logLevel, "text")

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error(ctx, "Shutdown cleanup failed", "error", err)
		}
	}()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFile()
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	m := menu.New(a.Tasks, historyPrompter{line}, os.Stdout,
		menu.WithWeather(a.Weather),
		menu.WithChartDir(cfg.ChartDir))
	return m.Run(ctx)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tracker_history"
	}
	return filepath.Join(home, ".tracker_history")
}

// historyPrompter records non-empty answers so up-arrow recalls them.
type historyPrompter struct{ *liner.State }

func (p historyPrompter) Prompt(prompt string) (string, error) {
	s, err := p.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(s) != "" {
		p.AppendHistory(s)
	}
	return s, err
}
