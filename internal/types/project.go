package types

import (
	"strings"
	"time"
)

// AdminProjectName is the reserved name of the always-present,
// non-editable, non-deletable project pinned at index 0.
const AdminProjectName = "admin"

// DefaultProjectName is used for the ephemeral project synthesized
// when no non-deleted user project exists.
const DefaultProjectName = "Default"

type Project struct {
	ID          ProjectId
	Name        string
	Repos       []string // ordered, absolute paths
	Roles       []Role   // ordered
	MCPServers  []McpServer
	DeletedAt   *time.Time
	IsAdmin     bool
	PinnedIndex *uint32
}

// ValidateName enforces the 1..64 trimmed-non-empty rule shared by
// projects and roles.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errValidation("name", "must not be empty")
	}
	if len(trimmed) > 64 {
		return errValidation("name", "must be at most 64 characters")
	}
	return nil
}

// NamesCollide reports whether two project (or role) names collide
// under the case-insensitive uniqueness invariant.
func NamesCollide(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsDeleted reports whether the project has been soft-deleted.
func (p *Project) IsDeleted() bool { return p.DeletedAt != nil }

// NewEphemeralDefault synthesizes the unpersisted Default project
// rooted at cwd, used when the active project list would otherwise be
// empty.
func NewEphemeralDefault(cwd string) Project {
	return Project{
		ID:    NewProjectId(),
		Name:  DefaultProjectName,
		Repos: []string{cwd},
	}
}
