package models

// Group kinds.
const (
	GroupKindTrip  = "trip"
	GroupKindGroup = "group"
)

// Group is a set of people who share expenses: a trip or a standing group.
// All transactions and settlements belong to exactly one group, and a
// group is the scope of a settlement computation.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Goa 2026", "Flatmates").
	Name string

	// Kind is GroupKindTrip or GroupKindGroup.
	Kind string

	// Members are the people in this group.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a person in a group. UserID may reference a registered user or
// be a free-form identifier for someone without an account.
type Member struct {
	UserID string
	Name   string
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberName returns the display name for userID, or userID itself if unknown.
func (g *Group) MemberName(userID string) string {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m.Name
		}
	}
	return userID
}
