package models

import "time"

// Source names a single upstream read that feeds an Aggregate.
type Source string

const (
	SourceProfile         Source = "profile"
	SourceAvatar          Source = "avatar"
	SourceFriendsCount    Source = "friends_count"
	SourceFollowers       Source = "followers"
	SourceFollowing       Source = "following"
	SourceFriends         Source = "friends"
	SourceGroups          Source = "groups"
	SourceBadges          Source = "badges"
	SourceUsernameHistory Source = "username_history"
)

// Aggregate is everything one lookup collected about an account.
// Unverified lists the sources that failed or stopped before the last page;
// their fields hold whatever was collected (empty, zero or null).
type Aggregate struct {
	Profile         Profile           `json:"profile"`
	Friends         []Friend          `json:"friends"`
	Groups          []GroupMembership `json:"groups"`
	Badges          []Badge           `json:"badges"`
	UsernameHistory []PastUsername    `json:"username_history"`
	Counts          Counts            `json:"counts"`
	Unverified      []Source          `json:"unverified"`
	FetchedAt       time.Time         `json:"fetched_at"`
}

// IsVerified reports whether source completed without error.
func (a *Aggregate) IsVerified(source Source) bool {
	for _, s := range a.Unverified {
		if s == source {
			return false
		}
	}
	return true
}

// Complete reports whether every source was fetched in full.
func (a *Aggregate) Complete() bool {
	return len(a.Unverified) == 0
}

// AccountAgeDays returns whole days between the creation timestamp and now.
// ok is false when the creation date is unknown.
func (a *Aggregate) AccountAgeDays(now time.Time) (days int, ok bool) {
	if a.Profile.Created == nil || a.Profile.Created.IsZero() {
		return 0, false
	}
	d := int(now.Sub(*a.Profile.Created).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return d, true
}

func (a *Aggregate) GroupIDs() []int64 {
	ids := make([]int64, 0, len(a.Groups))
	for _, g := range a.Groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func (a *Aggregate) FriendIDs() []int64 {
	ids := make([]int64, 0, len(a.Friends))
	for _, f := range a.Friends {
		ids = append(ids, f.ID)
	}
	return ids
}
