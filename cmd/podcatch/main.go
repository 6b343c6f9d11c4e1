package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/podcatch/internal/bus"
	"github.com/mmcdole/podcatch/internal/catalog"
	"github.com/mmcdole/podcatch/internal/config"
	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/log"
	"github.com/mmcdole/podcatch/internal/playback"
	"github.com/mmcdole/podcatch/internal/player"
	"github.com/mmcdole/podcatch/internal/state"
	"github.com/mmcdole/podcatch/internal/store"
	"github.com/mmcdole/podcatch/internal/tui"
	"github.com/mmcdole/podcatch/internal/tui/styles"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type options struct {
	configDir   string
	reset       bool
	ephemeral   bool
	writeConfig bool
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configDir, "config", "", "directory containing config.yaml")
	flag.BoolVar(&opts.reset, "reset", false, "clear favorites, queue and cached categories")
	flag.BoolVar(&opts.ephemeral, "ephemeral", false, "keep state in memory only")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "write the effective configuration and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("podcatch %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.writeConfig {
		dir := opts.configDir
		if dir == "" {
			dir = config.DefaultConfigPath()
		}
		if err := config.SaveConfig(cfg, dir); err != nil {
			return err
		}
		fmt.Printf("✓ Configuration written to %s\n", dir)
		return nil
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting podcatch", "version", Version)

	storageDir := cfg.Storage.Dir
	if opts.ephemeral {
		storageDir = ""
	}
	kv, err := store.NewStore(storageDir, cfg.Storage.Profile)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer kv.Close()

	events := bus.New(logger)
	repo := state.New(kv, events, logger)

	if opts.reset {
		repo.ClearAll()
		fmt.Println("✓ State cleared")
	}

	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		initializeWithSpinner(repo, client, cfg.Catalog.Timeout)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.Timeout)
		repo.InitializeDefaults(ctx, client)
		cancel()
	}

	if !interactive {
		return printSummary(os.Stdout, repo, kv.Keys())
	}

	// Nil args let the launcher apply the defaults for known players
	var playerArgs []string
	if len(cfg.Player.Args) > 0 {
		playerArgs = cfg.Player.Args
	}
	launcher := player.NewLauncher(cfg.Player.Command, playerArgs, logger)
	defer launcher.Stop()

	playbackSvc := playback.NewService(repo, client, launcher, logger)

	observer := tui.NewChannelObserver(events, 64, domain.TopicFavorites, domain.TopicQueue)
	defer observer.Close()

	model := tui.NewModel(tui.Deps{
		State:      repo,
		Playback:   playbackSvc,
		Catalog:    client,
		Player:     launcher,
		Changes:    observer.Changes(),
		PlayerDone: launcher.Done(),
		Logger:     logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		return config.LoadConfig()
	}
	return config.Load(viper.New(), dir)
}

// initializeWithSpinner refreshes the category cache with a visual spinner
func initializeWithSpinner(repo *state.Repository, client *catalog.Client, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		repo.InitializeDefaults(ctx, client)
		close(done)
	}()

	frame := 0
	fmt.Printf("\r%s Loading categories...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Print(clearSpinnerLine)
			return
		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Loading categories...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
		}
	}
}

// printSummary writes the persisted state for non-interactive use
func printSummary(w io.Writer, repo *state.Repository, keys []string) error {
	categories, _ := repo.Categories()

	var b strings.Builder
	fmt.Fprintf(&b, "stored: %s\n", strings.Join(keys, ", "))
	fmt.Fprintf(&b, "categories: %d cached\n", len(categories))
	fmt.Fprintf(&b, "favorites: %s\n", joinIDs(repo.Favorites()))
	fmt.Fprintf(&b, "queue: %s\n", joinIDs(repo.Queue()))

	_, err := io.WriteString(w, b.String())
	return err
}

func joinIDs(ids domain.IDSet) string {
	if ids.Len() == 0 {
		return "(empty)"
	}
	return strings.Join(ids.Values(), ", ")
}
