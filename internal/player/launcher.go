// Package player runs episodes in an external audio player process.
package player

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mmcdole/podcatch/internal/domain"
)

// Finished reports the end of a player process. A nil Err means the episode
// played to the end.
type Finished struct {
	EpisodeID string
	Err       error
}

// playerConfig holds the arguments a known player needs to run headless and
// exit once the stream ends.
type playerConfig struct {
	args []string
}

// players registry - single source of truth for known audio players
var players = map[string]playerConfig{
	"mpv":    {args: []string{"--no-video", "--really-quiet"}},
	"ffplay": {args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	"vlc":    {args: []string{"--intf", "dummy", "--play-and-exit"}},
	"cvlc":   {args: []string{"--play-and-exit"}},
	"mpg123": {args: []string{"-q"}},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv", "ffplay", "vlc"},
	"linux":   {"mpv", "ffplay", "cvlc", "vlc", "mpg123"},
	"windows": {"mpv", "ffplay", "vlc"},
}

// Launcher plays one episode at a time. Launching a new episode stops the
// previous process without reporting it as finished.
type Launcher struct {
	command string
	args    []string
	logger  *slog.Logger

	mu      sync.Mutex
	current *exec.Cmd
	gen     uint64

	done chan Finished
}

// NewLauncher creates a launcher. An empty command auto-detects an installed
// player; nil args fall back to the registry defaults for known players.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		done:    make(chan Finished, 4),
	}
}

// Done delivers one Finished per episode that exits on its own
func (l *Launcher) Done() <-chan Finished {
	return l.done
}

// Launch starts url in the player, stopping whatever was playing
func (l *Launcher) Launch(episodeID, url string) error {
	command, args, err := l.resolve()
	if err != nil {
		return err
	}
	args = append(args, url)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()

	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", command, err)
	}
	l.gen++
	l.current = cmd
	l.logger.Info("launching player", "command", command, "args", args, "episodeID", episodeID)

	go l.wait(cmd, l.gen, episodeID)
	return nil
}

// Stop kills the running player, if any
func (l *Launcher) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Launcher) stopLocked() {
	if l.current == nil {
		return
	}
	// Bumping the generation marks the old process as superseded.
	l.gen++
	if l.current.Process != nil {
		if err := l.current.Process.Kill(); err != nil {
			l.logger.Debug("failed to kill player", "error", err)
		}
	}
	l.current = nil
}

func (l *Launcher) wait(cmd *exec.Cmd, gen uint64, episodeID string) {
	err := cmd.Wait()

	l.mu.Lock()
	superseded := gen != l.gen
	if !superseded {
		l.current = nil
	}
	l.mu.Unlock()

	if superseded {
		return
	}

	if err != nil {
		l.logger.Warn("player exited with error", "error", err, "episodeID", episodeID)
	} else {
		l.logger.Info("player finished", "episodeID", episodeID)
	}

	select {
	case l.done <- Finished{EpisodeID: episodeID, Err: err}:
	default:
		l.logger.Warn("dropped player completion, nobody listening", "episodeID", episodeID)
	}
}

// resolve picks the command and base arguments to run
func (l *Launcher) resolve() (string, []string, error) {
	if l.command != "" {
		args := l.args
		if args == nil {
			if cfg, ok := players[playerName(l.command)]; ok {
				args = cfg.args
			}
		}
		return l.command, append([]string{}, args...), nil
	}

	name, path, ok := detect(runtime.GOOS, exec.LookPath)
	if !ok {
		return "", nil, domain.ErrNoPlayer
	}
	l.logger.Debug("detected player", "player", name, "path", path)
	args := l.args
	if args == nil {
		args = players[name].args
	}
	return path, append([]string{}, args...), nil
}

// detect returns the first candidate player for goos that lookPath can find
func detect(goos string, lookPath func(string) (string, error)) (string, string, bool) {
	candidates, ok := candidatePlayers[goos]
	if !ok {
		candidates = candidatePlayers["linux"] // default
	}
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			return name, path, true
		}
	}
	return "", "", false
}

// playerName normalizes a command path to a registry key
func playerName(command string) string {
	base := filepath.Base(command)
	// Strip any extension (for Windows .exe)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}
