package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, minimum string
		want          bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{"unknown", RoleUser, false},
	}
	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
}
