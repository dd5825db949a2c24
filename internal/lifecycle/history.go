package lifecycle

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk/internal/types"
)

// NameResolver turns a user id into a display name for history snapshots.
// History records names, not references, so entries stay readable even if
// the user record later changes or disappears.
type NameResolver func(userID string) string

// UserIndex builds a NameResolver over a user collection. Unresolvable ids
// render as "Unknown".
func UserIndex(users []types.User) NameResolver {
	byID := make(map[string]types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return func(id string) string {
		if u, ok := byID[id]; ok {
			return u.FullName()
		}
		return "Unknown"
	}
}

// DeriveHistory computes the history entries an edit produces by diffing the
// prior and incoming snapshots of assigned_user, assigned_users and
// active_users. prev == nil is the creation path. All derived entries share
// the given timestamp and are returned in a fixed order: ownership first,
// usage second. The caller appends them; existing entries are never touched.
func DeriveHistory(prev, next *types.Asset, name NameResolver, now time.Time) []types.HistoryEntry {
	if prev == nil {
		return initialHistory(next, name, now)
	}

	var out []types.HistoryEntry

	// Single-owner change.
	prevOwner, newOwner := prev.AssignedUser, next.AssignedUser
	switch {
	case prevOwner != "" && prevOwner != newOwner:
		to := "Unassigned"
		if newOwner != "" {
			to = name(newOwner)
		}
		out = append(out, types.HistoryEntry{
			Date:         now,
			Type:         types.HistoryReassigned,
			AssignedFrom: name(prevOwner),
			AssignedTo:   to,
		})
	case prevOwner == "" && newOwner != "":
		out = append(out, types.HistoryEntry{
			Date:       now,
			Type:       types.HistoryAssigned,
			AssignedTo: name(newOwner),
		})
	}

	// Multi-owner change. The summary entry records only the new member
	// count, not individual names; the asymmetry with the other two paths is
	// inherited behavior, kept deliberately.
	if !sameIDSet(prev.AssignedUsers, next.AssignedUsers) && len(next.AssignedUsers) > 0 {
		out = append(out, types.HistoryEntry{
			Date:  now,
			Type:  types.HistoryReassigned,
			Notes: pluralUsers("Assigned to", len(next.AssignedUsers)),
		})
	}

	// Active-user change.
	if !sameIDSet(prev.ActiveUsers, next.ActiveUsers) {
		added, removed := diffIDSets(prev.ActiveUsers, next.ActiveUsers)
		out = append(out, types.HistoryEntry{
			Date:  now,
			Type:  types.HistoryUsageUpdate,
			Notes: usageNotes(added, removed, name),
		})
	}

	return out
}

// initialHistory seeds a brand-new asset's log when it is created already
// owned or already in use.
func initialHistory(a *types.Asset, name NameResolver, now time.Time) []types.HistoryEntry {
	var out []types.HistoryEntry
	switch {
	case a.AssignedUser != "":
		out = append(out, types.HistoryEntry{
			Date:       now,
			Type:       types.HistoryAssigned,
			AssignedTo: name(a.AssignedUser),
			Notes:      "Initial assignment",
		})
	case len(a.AssignedUsers) > 0:
		out = append(out, types.HistoryEntry{
			Date:  now,
			Type:  types.HistoryAssigned,
			Notes: "Initial assignment: " + pluralUsers("", len(a.AssignedUsers)),
		})
	}
	if len(a.ActiveUsers) > 0 {
		names := make([]string, len(a.ActiveUsers))
		for i, id := range a.ActiveUsers {
			names[i] = name(id)
		}
		out = append(out, types.HistoryEntry{
			Date:  now,
			Type:  types.HistoryUsageUpdate,
			Notes: "Initial active users: " + strings.Join(names, ", "),
		})
	}
	return out
}

// sameIDSet compares two id slices order-independently via sorted join.
func sameIDSet(a, b []string) bool {
	return sortedJoin(a) == sortedJoin(b)
}

func sortedJoin(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

func diffIDSets(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, id := range prev {
		prevSet[id] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
		if !prevSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !nextSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func usageNotes(added, removed []string, name NameResolver) string {
	var parts []string
	if len(added) > 0 {
		names := make([]string, len(added))
		for i, id := range added {
			names[i] = name(id)
		}
		parts = append(parts, "Added: "+strings.Join(names, ", "))
	}
	if len(removed) > 0 {
		names := make([]string, len(removed))
		for i, id := range removed {
			names[i] = name(id)
		}
		parts = append(parts, "Removed: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "; ")
}

func pluralUsers(prefix string, n int) string {
	word := "users"
	if n == 1 {
		word = "user"
	}
	if prefix == "" {
		return strconv.Itoa(n) + " " + word
	}
	return prefix + " " + strconv.Itoa(n) + " " + word
}
