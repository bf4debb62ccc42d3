package acl

import "strings"

// Admins is the allow-list of identities that may mutate records they do not own.
// Emails match case-insensitively, UIDs exactly.
type Admins struct {
	emails map[string]struct{}
	uids   map[string]struct{}
}

func NewAdmins(emails, uids []string) *Admins {
	a := &Admins{
		emails: make(map[string]struct{}),
		uids:   make(map[string]struct{}),
	}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	for _, u := range uids {
		if u = strings.TrimSpace(u); u != "" {
			a.uids[u] = struct{}{}
		}
	}
	return a
}

func (a *Admins) IsAdmin(id *Identity) bool {
	if a == nil || id == nil || id.UID == "" {
		return false
	}
	if _, ok := a.uids[id.UID]; ok {
		return true
	}
	if id.Email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(id.Email)]
	return ok
}

// CanMutate reports whether id may edit or delete a record owned by ownerUID.
func (a *Admins) CanMutate(id *Identity, ownerUID string) bool {
	if id == nil || id.UID == "" {
		return false
	}
	if ownerUID != "" && id.UID == ownerUID {
		return true
	}
	return a.IsAdmin(id)
}

func (a *Admins) Len() int {
	if a == nil {
		return 0
	}
	return len(a.emails) + len(a.uids)
}
