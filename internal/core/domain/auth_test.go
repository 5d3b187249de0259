package domain

import "testing"

func TestAuthContext_IsAdmin(t *testing.T) {
	admin := &AuthContext{Email: "desk@concierge.test", Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("expected admin role to be admin")
	}

	agent := &AuthContext{Email: "agent@concierge.test", Role: RoleAgent}
	if agent.IsAdmin() {
		t.Error("expected agent role not to be admin")
	}
}
