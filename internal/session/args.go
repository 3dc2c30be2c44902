package session

import (
	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/types"
)

// ArgsConfig carries everything BuildArgv needs to build the child
// process's argv: permission mode, allow/deny tool lists, an
// append-system-prompt string, additional worktree/auxiliary dirs, and
// either a fresh claude_session_id or a resume id from a prior run.
type ArgsConfig struct {
	ClaudeSessionID string
	ResumeID        string // set on restart; takes precedence over ClaudeSessionID
	Role            *types.Role
	AdditionalDirs  []string
}

// BuildArgv mirrors build_claude_args: resume (if set) takes
// precedence over a fresh --session-id; permission mode defaults to
// "default" when the role leaves it unset; allowed/disallowed tools
// are space-joined into --allowedTools/--disallowedTools;
// append-system-prompt and one --add-dir per additional directory
// follow.
func BuildArgv(program string, cfg ArgsConfig) []string {
	argv := []string{program}

	if cfg.ResumeID != "" {
		argv = append(argv, "--resume", cfg.ResumeID)
	} else {
		argv = append(argv, "--session-id", cfg.ClaudeSessionID)
	}

	mode := types.PermissionDefault
	if cfg.Role != nil && cfg.Role.PermissionMode != "" {
		mode = cfg.Role.PermissionMode
	}
	argv = append(argv, "--permission-mode", string(mode))

	if cfg.Role != nil {
		if len(cfg.Role.AllowedTools) > 0 {
			argv = append(argv, "--allowedTools", joinSpace(cfg.Role.AllowedTools))
		}
		if len(cfg.Role.DisallowedTools) > 0 {
			argv = append(argv, "--disallowedTools", joinSpace(cfg.Role.DisallowedTools))
		}
		if cfg.Role.AppendSystemPrompt != "" {
			argv = append(argv, "--append-system-prompt", cfg.Role.AppendSystemPrompt)
		}
	}

	for _, dir := range cfg.AdditionalDirs {
		argv = append(argv, "--add-dir", dir)
	}

	return argv
}

func joinSpace(items []string) string {
	out := items[0]
	for _, s := range items[1:] {
		out += " " + s
	}
	return out
}

// NewSpec builds the SpawnSpec for a fresh session: a new
// claude_session_id, no --resume.
func NewSpec(program string, sess *types.Session, role *types.Role, cols, rows int) backend.SpawnSpec {
	argv := BuildArgv(program, ArgsConfig{
		ClaudeSessionID: sess.ClaudeSessionID,
		Role:            role,
		AdditionalDirs:  sess.AdditionalDirs,
	})
	return backend.SpawnSpec{
		Name: sess.Name,
		Argv: argv,
		Cwd:  sess.Cwd,
		Cols: cols,
		Rows: rows,
	}
}

// RestartSpec builds the SpawnSpec for §4.4's restart operation: same
// SessionId, name, and cwd; the previous claude_session_id passed as
// --resume plus freshly-resolved role arguments from current project
// state.
func RestartSpec(program string, sess *types.Session, role *types.Role, cols, rows int) backend.SpawnSpec {
	argv := BuildArgv(program, ArgsConfig{
		ResumeID:       sess.ClaudeSessionID,
		Role:           role,
		AdditionalDirs: sess.AdditionalDirs,
	})
	return backend.SpawnSpec{
		Name: sess.Name,
		Argv: argv,
		Cwd:  sess.Cwd,
		Cols: cols,
		Rows: rows,
	}
}
