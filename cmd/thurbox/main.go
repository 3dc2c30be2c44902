// Command thurbox is the interactive terminal orchestrator: one
// bubbletea program, no subcommands, matching §6's "one interactive
// binary (no subcommands)".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thurbox/thurbox/internal/app"
	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/backend/localmux"
	"github.com/thurbox/thurbox/internal/config"
	"github.com/thurbox/thurbox/internal/logging"
	"github.com/thurbox/thurbox/internal/paths"
	"github.com/thurbox/thurbox/internal/store"
	"github.com/thurbox/thurbox/internal/sync"
	"github.com/thurbox/thurbox/internal/types"
	"github.com/thurbox/thurbox/internal/view/styles"
	"github.com/thurbox/thurbox/internal/worktree"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "thurbox: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := paths.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := paths.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logPath, err := paths.LogPath()
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	log, closer, err := logging.Setup(logPath)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	styles.SetNoColor(cfg.Theme.NoColor)

	dbPath, err := paths.DBPath()
	if err != nil {
		return fmt.Errorf("resolve db path: %w", err)
	}
	instanceID := types.NewInstanceId()
	st, err := store.Open(dbPath, string(instanceID))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	if err := st.EnsureAdminProject(ctx); err != nil {
		return fmt.Errorf("ensure admin project: %w", err)
	}
	if err := config.ImportLegacyIfPresent(ctx, st); err != nil {
		log.Warn("legacy config import failed", "err", err)
	}
	if err := writeAdminMCPManifest(); err != nil {
		log.Warn("write admin mcp manifest failed", "err", err)
	}

	var be backend.SessionBackend = localmux.New()
	if err := be.CheckAvailable(ctx); err != nil {
		return fmt.Errorf("backend unavailable: %w", err)
	}
	if err := be.EnsureReady(ctx); err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}

	projects, err := st.ListProjects(ctx, false)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		cwd, _ := os.Getwd()
		def := types.NewEphemeralDefault(cwd)
		projects = append(projects, def)
	}

	var sessions []types.Session
	for _, p := range projects {
		if p.DeletedAt != nil {
			continue
		}
		ss, err := st.ListSessions(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("list sessions for %s: %w", p.Name, err)
		}
		sessions = append(sessions, ss...)
	}

	homeDir, _ := os.UserHomeDir()
	model := app.New(instanceID, cfg.Program, homeDir, projects, sessions)

	exec := app.NewExecutor(be, st, log)
	for _, s := range sessions {
		if s.BackendID == "" {
			continue
		}
		go exec.AdoptExisting(ctx, s.ID, backend.BackendId(s.BackendID), 80, 24)
	}

	sharedStatePath, err := paths.SharedStatePath()
	if err != nil {
		return fmt.Errorf("resolve shared state path: %w", err)
	}
	poller := sync.StartPoller(sharedStatePath, cfg.Sync.PollInterval(), cfg.Sync.Debounce(), log)
	defer poller.Stop()
	go forwardSyncDeltas(poller, exec)

	fetcher := worktree.StartFetcher(worktreeTargets(ctx, st), log)
	defer fetcher.Stop()
	go forwardWorktreeUpdates(fetcher, exec)

	program := app.NewProgram(ctx, model, exec)
	p := tea.NewProgram(program, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// forwardSyncDeltas relays the poller's output onto the executor's
// message channel, so a change written by another cooperating process
// replays through Update the same way any other event does.
func forwardSyncDeltas(poller *sync.Poller, exec *app.Executor) {
	for delta := range poller.Deltas {
		exec.Out <- app.Sync{Delta: delta}
	}
}

// worktreeTargets returns the closure the standing worktree fetcher
// calls on every tick to learn the current set of worktrees to sync,
// per §5's periodic-fetch task. It reads straight from the store
// rather than the bubbletea model, since the model is only safe to
// touch from inside Update.
func worktreeTargets(ctx context.Context, st *store.Store) func() []worktree.Target {
	return func() []worktree.Target {
		projects, err := st.ListProjects(ctx, false)
		if err != nil {
			return nil
		}
		var targets []worktree.Target
		for _, p := range projects {
			sessions, err := st.ListSessions(ctx, p.ID)
			if err != nil {
				continue
			}
			for _, s := range sessions {
				if s.Worktree == nil {
					continue
				}
				targets = append(targets, worktree.Target{
					SessionID:    s.ID,
					WorktreePath: s.Worktree.WorktreePath,
					RemoteRef:    "origin/" + s.Worktree.Branch,
				})
			}
		}
		return targets
	}
}

// forwardWorktreeUpdates relays the fetcher's freshly computed sync
// statuses onto the executor's message channel, mirroring
// forwardSyncDeltas.
func forwardWorktreeUpdates(f *worktree.Fetcher, exec *app.Executor) {
	for u := range f.Updates {
		exec.Out <- app.WorktreeSynced{SessionID: u.SessionID, Status: u.Status}
	}
}

// writeAdminMCPManifest rewrites <data-dir>/admin/.mcp.json with the
// current thurboxctl binary's path on every launch, per §6, so a
// session's role can reference "thurbox-admin" as an MCP server
// without any manual configuration.
func writeAdminMCPManifest() error {
	mcpPath, err := paths.AdminMCPPath()
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(mcpPath)); err != nil {
		return err
	}
	ctlPath, err := adminBinaryPath()
	if err != nil {
		return err
	}
	doc := fmt.Sprintf(`{
  "mcpServers": {
    "thurbox-admin": {
      "command": %q,
      "args": []
    }
  }
}
`, ctlPath)
	return os.WriteFile(mcpPath, []byte(doc), 0o644)
}

func adminBinaryPath() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", err
	}
	candidate := filepath.Join(filepath.Dir(self), "thurboxctl")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "thurboxctl", nil
}
