package workbook

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/slatehq/workbench/internal/docstore"
)

// Role is a UI-level sharing role.
type Role string

const (
	// RoleView grants read-only access.
	RoleView Role = "view"
	// RoleEdit grants read and write access.
	RoleEdit Role = "edit"
)

// UserShare is one user's access to the workbook in UI terms.
type UserShare struct {
	User string `json:"user"`
	Role Role   `json:"role"`
}

// roleFromFlags maps the backend's read/write flags to a UI role.
func roleFromFlags(p docstore.SharePermission) Role {
	if p.Write {
		return RoleEdit
	}
	return RoleView
}

// flagsFromRole maps a UI role back to backend flags. Edit implies read.
func flagsFromRole(user string, role Role) docstore.SharePermission {
	return docstore.SharePermission{
		User:  user,
		Read:  true,
		Write: role == RoleEdit,
	}
}

// SharePermissions fetches who the workbook is shared with, mapped to UI
// roles.
func (s *Session) SharePermissions(ctx context.Context) ([]UserShare, error) {
	raw, err := s.store.Call(ctx, docstore.DoctypeWorkbook, s.doc.Name,
		docstore.MethodGetShares, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch share permissions: %w", err)
	}

	var perms []docstore.SharePermission
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, fmt.Errorf("failed to decode share permissions: %w", err)
	}

	shares := make([]UserShare, 0, len(perms))
	for _, p := range perms {
		shares = append(shares, UserShare{User: p.User, Role: roleFromFlags(p)})
	}
	return shares, nil
}

// UpdateShare pushes the full share list to the store. A remote failure
// surfaces as a generic error toast; callers treat the operation as
// fire-and-forget, matching the UI flow it backs.
func (s *Session) UpdateShare(ctx context.Context, shares []UserShare) {
	perms := make([]docstore.SharePermission, 0, len(shares))
	for _, share := range shares {
		perms = append(perms, flagsFromRole(share.User, share.Role))
	}

	_, err := s.store.Call(ctx, docstore.DoctypeWorkbook, s.doc.Name,
		docstore.MethodUpdateShares, map[string]any{"permissions": perms})
	if err != nil {
		s.logger.Error("failed to update share permissions",
			"workbook", s.doc.Name, "error", err)
		s.toast.Error("Failed to update permissions")
	}
}
