// Command thurboxctl is the non-interactive admin RPC binary (§6): it
// speaks the thirteen-plus-one adminrpc operations as newline-delimited
// JSON on stdin/stdout, against the same store the interactive thurbox
// binary uses. <data-dir>/admin/.mcp.json points a session's MCP
// config at this binary's path, so a role can add "thurbox-admin" as a
// tool server without any separate daemon to run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thurbox/thurbox/internal/adminrpc"
	"github.com/thurbox/thurbox/internal/logging"
	"github.com/thurbox/thurbox/internal/paths"
	"github.com/thurbox/thurbox/internal/store"
	"github.com/thurbox/thurbox/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "thurboxctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logPath, err := paths.LogPath()
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	log, closer, err := logging.Setup(logPath)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	dbPath, err := paths.DBPath()
	if err != nil {
		return fmt.Errorf("resolve db path: %w", err)
	}
	st, err := store.Open(dbPath, string(types.NewInstanceId()))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	srv := adminrpc.NewServer(st, log)
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
