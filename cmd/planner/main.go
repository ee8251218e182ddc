package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rayedriasat/taskplanner/internal/config"
	"github.com/rayedriasat/taskplanner/internal/events"
	"github.com/rayedriasat/taskplanner/internal/notify"
	"github.com/rayedriasat/taskplanner/internal/persistence"
	"github.com/rayedriasat/taskplanner/internal/planner"
	"github.com/rayedriasat/taskplanner/internal/scheduler"
	"github.com/rayedriasat/taskplanner/internal/tui"
)

func main() {
	userID := flag.String("user", "default", "user whose schedule to manage")
	flag.Parse()

	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Determine config paths
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		os.Exit(1)
	}
	globalPath := filepath.Join(homeDir, ".taskplanner", "config.json")
	projectPath := filepath.Join(".taskplanner", "config.json")

	// Open the task store
	store, err := persistence.NewSQLiteStore(ctx, cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Create event bus
	bus := events.NewEventBus()
	defer bus.Close()

	// Wire the planner service
	svc := planner.NewService(store, engineFromConfig(cfg), bus, notify.NewFromConfig(cfg.Notify))

	// Create TUI model
	model := tui.New(svc, *userID, bus, cfg, globalPath, projectPath)

	// Start Bubble Tea program in a goroutine so main can handle shutdown
	p := tea.NewProgram(model, tea.WithAltScreen())

	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	// Handle shutdown
	select {
	case err := <-errChan:
		// Normal TUI exit (user pressed 'q' or TUI finished)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		// Signal received (Ctrl+C or SIGTERM)
		// Call stop() to restore default signal handling (double Ctrl+C = force exit)
		stop()

		log.Println("Shutdown signal received, cleaning up...")

		// Quit the TUI
		p.Quit()

		// Wait for TUI to exit with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		select {
		case err := <-errChan:
			if err != nil {
				log.Printf("TUI exit error: %v", err)
			}
		case <-shutdownCtx.Done():
			log.Println("Shutdown timeout exceeded, forcing exit")
		}
	}

	log.Println("Shutdown complete")
}

// engineFromConfig applies the scheduling tuning to a fresh engine.
// Zero values fall back to the engine defaults.
func engineFromConfig(cfg *config.PlannerConfig) *scheduler.Engine {
	engine := scheduler.NewEngine()
	if cfg.Scheduling.HorizonDays > 0 {
		engine.HorizonDays = cfg.Scheduling.HorizonDays
	}
	if cfg.Scheduling.SplitCoverage > 0 {
		engine.SplitCoverage = cfg.Scheduling.SplitCoverage
	}
	if cfg.Scheduling.OverloadCoverage > 0 {
		engine.OverloadCoverage = cfg.Scheduling.OverloadCoverage
	}
	return engine
}
