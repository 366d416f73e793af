package channel

import (
	"strings"

	"github.com/ideavault/ideavault/pkg/message"
)

// AllowList controls which users and groups may submit ideas through a
// channel, and which users count as administrators. An empty or nil
// AllowList denies everyone — security by default.
type AllowList struct {
	users  map[string]struct{}
	groups map[string]struct{}
	admins map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Keys are
// trimmed and lowercased at construction time so that IsAllowed can
// use direct map lookups. Admins are implicitly allowed users.
func NewAllowList(users, groups, admins []string) *AllowList {
	a := &AllowList{
		users:  make(map[string]struct{}, len(users)+len(admins)),
		groups: make(map[string]struct{}, len(groups)),
		admins: make(map[string]struct{}, len(admins)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	for _, g := range groups {
		a.groups[normalize(g)] = struct{}{}
	}
	for _, adm := range admins {
		a.admins[normalize(adm)] = struct{}{}
		a.users[normalize(adm)] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the message sender or chat is permitted.
//
// Rules:
//   - If all maps are empty → deny (no one is allowed).
//   - If the sender's ID or username matches a user entry → allow.
//   - If the chat's ID matches a group entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if a == nil || (len(a.users) == 0 && len(a.groups) == 0) {
		return false
	}

	if a.matchUser(a.users, msg.Sender) {
		return true
	}
	if _, ok := a.groups[normalize(msg.Chat.ID)]; ok {
		return true
	}
	return false
}

// IsAdmin reports whether the sender is an administrator. Admin-only
// commands (stats) call this after IsAllowed.
func (a *AllowList) IsAdmin(msg message.InboundMessage) bool {
	if a == nil {
		return false
	}
	return a.matchUser(a.admins, msg.Sender)
}

func (a *AllowList) matchUser(set map[string]struct{}, s message.Sender) bool {
	if _, ok := set[normalize(s.ID)]; ok {
		return true
	}
	if s.Username != "" {
		if _, ok := set[normalize(s.Username)]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
