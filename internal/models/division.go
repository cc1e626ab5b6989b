package models

// Division is an organizational unit that runs its own blacklist.
type Division struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}
