package models

import "fmt"

// Access is a per-site permission tier. The ordering is
// noaccess < view < admin; Superuser is a global flag on the user, above
// every per-site grant, not a grant itself.
type Access string

const (
	AccessNoAccess  Access = "noaccess"
	AccessView      Access = "view"
	AccessAdmin     Access = "admin"
	AccessSuperuser Access = "superuser"
)

var accessRank = map[Access]int{
	AccessNoAccess:  0,
	AccessView:      1,
	AccessAdmin:     2,
	AccessSuperuser: 3,
}

// ParseAccess validates a wire-level access string.
func ParseAccess(s string) (Access, error) {
	a := Access(s)
	if _, ok := accessRank[a]; !ok {
		return "", fmt.Errorf("invalid access level %q", s)
	}
	return a, nil
}

// AtLeast reports whether a grants at least the given level.
func (a Access) AtLeast(min Access) bool {
	return accessRank[a] >= accessRank[min]
}

// AccessGrant is an explicit (login, site) permission row. Rows only exist
// for view and admin; noaccess is represented by the row's absence and
// superuser by User.Superuser.
type AccessGrant struct {
	Login  string
	IDSite int64
	Access Access
}
