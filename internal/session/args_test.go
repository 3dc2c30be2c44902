package session

import (
	"strings"
	"testing"

	"github.com/thurbox/thurbox/internal/types"
)

func TestBuildArgvSessionIDWhenNoResume(t *testing.T) {
	argv := BuildArgv("claude", ArgsConfig{ClaudeSessionID: "abc-123"})
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "--session-id abc-123") {
		t.Fatalf("expected --session-id in argv, got %q", joined)
	}
	if strings.Contains(joined, "--resume") {
		t.Fatalf("did not expect --resume when no resume id set: %q", joined)
	}
}

func TestBuildArgvResumeTakesPrecedence(t *testing.T) {
	argv := BuildArgv("claude", ArgsConfig{ClaudeSessionID: "abc-123", ResumeID: "abc-123"})
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "--resume abc-123") {
		t.Fatalf("expected --resume in argv, got %q", joined)
	}
	if strings.Contains(joined, "--session-id") {
		t.Fatalf("did not expect --session-id when resume id set: %q", joined)
	}
}

func TestBuildArgvDefaultPermissionMode(t *testing.T) {
	argv := BuildArgv("claude", ArgsConfig{ClaudeSessionID: "x"})
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "--permission-mode default") {
		t.Fatalf("expected default permission mode, got %q", joined)
	}
}

func TestBuildArgvToolsAndAddDir(t *testing.T) {
	role := &types.Role{
		PermissionMode:  types.PermissionAcceptEdits,
		AllowedTools:    []string{"Read", "Bash(git:*)"},
		DisallowedTools: []string{"Edit"},
	}
	argv := BuildArgv("claude", ArgsConfig{
		ClaudeSessionID: "x",
		Role:            role,
		AdditionalDirs:  []string{"/a", "/b"},
	})
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "--allowedTools Read Bash(git:*)") {
		t.Fatalf("expected space-joined allowed tools, got %q", joined)
	}
	if !strings.Contains(joined, "--disallowedTools Edit") {
		t.Fatalf("expected disallowed tools, got %q", joined)
	}
	if strings.Count(joined, "--add-dir") != 2 {
		t.Fatalf("expected one --add-dir per additional dir, got %q", joined)
	}
}
