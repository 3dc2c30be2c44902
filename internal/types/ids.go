// Package types holds the plain data model shared across every
// Thurbox component: identifiers, status enums, and the project,
// role, session, worktree and MCP server records. No logic beyond
// small invariant-checking constructors lives here.
package types

import "github.com/google/uuid"

// SessionId and ProjectId are UUID v4. A RoleId holds a role's name:
// roles have no id of their own, and Session.Role and the sessions.role
// column store the name. NewRoleId returns a UUID but nothing calls it.
// InstanceId is generated once per process start and used to attribute
// sync writes.
type SessionId string
type ProjectId string
type RoleId string
type InstanceId string

// BackendId is an opaque string assigned by the backend, e.g. a tmux
// pane id like "%3".
type BackendId string

func NewSessionId() SessionId   { return SessionId(uuid.New().String()) }
func NewProjectId() ProjectId   { return ProjectId(uuid.New().String()) }
func NewRoleId() RoleId         { return RoleId(uuid.New().String()) }
func NewInstanceId() InstanceId { return InstanceId(uuid.New().String()) }

// NewClaudeSessionID generates the resume-token UUID a session's
// backend is launched with and keeps across restarts.
func NewClaudeSessionID() string { return uuid.New().String() }
