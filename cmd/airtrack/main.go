package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/config"
	"github.com/dori/airtrack/internal/logging"
	"github.com/dori/airtrack/internal/ui"
	"github.com/dori/airtrack/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(configPath, themeName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if themeName != "" {
		if _, ok := theme.ByName(themeName); !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		cfg.UI.Theme = themeName
	}

	log, logFile, err := logging.OpenFile(cfg.Paths().LogFile, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Create application
	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	// The gate runs before the alt screen takes over the terminal
	if err := withPrompter(func(p *prompter) error {
		return authenticate(application, p)
	}); err != nil {
		return err
	}
	if path := application.Data.Recovered(); path != "" {
		fmt.Fprintf(os.Stderr, "Warning: the data file could not be read and was moved to %s\n", path)
	}

	// Create root model
	model := ui.NewRootModel(application)

	// Create and run program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	application.Start(ctx, ui.ProgramNotifier{Program: p})

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ui.RootModel); ok && m.Err() != nil {
		return fmt.Errorf("locked out: %w", m.Err())
	}
	return nil
}
