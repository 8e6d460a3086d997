// Package auth defines the identity contract the game core consumes.
// Credential verification itself happens upstream; the core only asks an
// Identity what it is allowed to do and what name it is linked to.
package auth

// Permission is a named capability granted to an identity.
type Permission string

// PermSendAnnouncement gates the server-wide announcement chat command.
const PermSendAnnouncement Permission = "send_announcement"

// Identity is the opaque credential bundle attached to a connection.
type Identity interface {
	// HasPermission reports whether the identity holds the given permission.
	HasPermission(p Permission) bool
	// LinkedName returns the display name linked to the account, if any.
	LinkedName() (string, bool)
	// InGameAdmin reports whether the identity is an elevated in-game admin.
	InGameAdmin() bool
	// AccountID returns the numeric account identifier.
	AccountID() int32
}

// AccountInfo is a plain Identity implementation used by the transport layer
// and by tests.
type AccountInfo struct {
	ID          int32
	Name        string
	NameLinked  bool
	Admin       bool
	Permissions map[Permission]bool
}

// HasPermission reports whether p was granted to the account.
func (a AccountInfo) HasPermission(p Permission) bool {
	return a.Permissions[p]
}

// LinkedName returns the account's linked display name, if one is set.
func (a AccountInfo) LinkedName() (string, bool) {
	if !a.NameLinked || a.Name == "" {
		return "", false
	}
	return a.Name, true
}

// InGameAdmin reports whether the account is an elevated admin.
func (a AccountInfo) InGameAdmin() bool { return a.Admin }

// AccountID returns the numeric account identifier.
func (a AccountInfo) AccountID() int32 { return a.ID }
