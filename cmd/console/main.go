package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// the TUI owns stdout; logs go to a file only when asked for
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONSOLE_LOG"); path != "" {
		f, err := tea.LogToFile(path, "console")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close()
		}()
		logOut = f
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))

	r, err := roster.Load(cfg.RosterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load roster: %v\n", err)
		os.Exit(1)
	}
	if len(r.Characters) < 2 {
		fmt.Fprintf(os.Stderr, "The roster needs at least two characters to talk\n")
		os.Exit(1)
	}

	engine, err := app.New(cfg, r, nil, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	p := tea.NewProgram(NewConsoleUI(engine, r),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
