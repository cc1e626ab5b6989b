package models

import "time"

// Profile is the public profile of a platform account.
type Profile struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	DisplayName      string     `json:"display_name"`
	Description      string     `json:"description"`
	Created          *time.Time `json:"created"`
	IsBanned         bool       `json:"is_banned"`
	HasVerifiedBadge bool       `json:"has_verified_badge"`
	AvatarURL        *string    `json:"avatar_url"`
}

type Friend struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// GroupMembership is a group the account belongs to together with its role there.
type GroupMembership struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Rank        int64  `json:"rank"`
	MemberCount int64  `json:"member_count"`
}

type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PastUsername struct {
	Username string `json:"username"`
}

type Counts struct {
	Friends   int `json:"friends"`
	Followers int `json:"followers"`
	Following int `json:"following"`
	Groups    int `json:"groups"`
	Badges    int `json:"badges"`
}
