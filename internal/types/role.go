package types

// PermissionMode mirrors the child CLI's permission model.
type PermissionMode string

const (
	PermissionDefault           PermissionMode = "default"
	PermissionPlan              PermissionMode = "plan"
	PermissionAcceptEdits       PermissionMode = "accept-edits"
	PermissionDontAsk           PermissionMode = "dont-ask"
	PermissionBypassPermissions PermissionMode = "bypass-permissions"
)

type Role struct {
	Name               string
	Description        string
	PermissionMode     PermissionMode // "" means unset / None
	AllowedTools       []string       // ordered, set semantics on lookup
	DisallowedTools    []string
	AppendSystemPrompt string
}

// ToolAllowed applies the "deny wins" rule from §3: a tool string
// present in both allow and deny is treated as denied.
func (r *Role) ToolAllowed(tool string) bool {
	for _, d := range r.DisallowedTools {
		if d == tool {
			return false
		}
	}
	for _, a := range r.AllowedTools {
		if a == tool {
			return true
		}
	}
	return false
}

// ValidateRoles enforces per-project role name uniqueness and each
// role's own name validity, in the order the caller supplies them.
// Returns the first violation found, matching the store's "validate
// first, then replace" atomic-replace contract.
func ValidateRoles(roles []Role) error {
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		if err := ValidateName(r.Name); err != nil {
			return err
		}
		key := normalizeRoleName(r.Name)
		if seen[key] {
			return errValidation("name", "duplicate")
		}
		seen[key] = true
	}
	return nil
}

func normalizeRoleName(name string) string { return name }
