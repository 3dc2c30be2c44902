package types

import "testing"

func TestValidateRolesDuplicateName(t *testing.T) {
	roles := []Role{{Name: "reviewer"}, {Name: "reviewer"}}
	if err := ValidateRoles(roles); err == nil {
		t.Fatal("expected duplicate name to fail validation")
	}
}

func TestValidateRolesDistinctNames(t *testing.T) {
	roles := []Role{{Name: "reviewer"}, {Name: "Reviewer"}}
	// Role names are compared case-sensitively, unlike project names.
	if err := ValidateRoles(roles); err != nil {
		t.Fatalf("expected case-distinct role names to be valid, got %v", err)
	}
}

func TestToolAllowedDenyWins(t *testing.T) {
	r := Role{AllowedTools: []string{"Bash"}, DisallowedTools: []string{"Bash"}}
	if r.ToolAllowed("Bash") {
		t.Fatal("expected deny to win when a tool is both allowed and disallowed")
	}
}

func TestNamesCollideCaseInsensitive(t *testing.T) {
	if !NamesCollide("Project One", "project one") {
		t.Fatal("expected case-insensitive collision")
	}
	if NamesCollide("Project One", "Project Two") {
		t.Fatal("did not expect distinct names to collide")
	}
}
