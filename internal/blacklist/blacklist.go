// Package blacklist cross-references an account's groups and friends
// against division blacklists.
package blacklist

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindGroup Kind = "group"
	KindUser  Kind = "user"
)

// Entry flags one group or user. An empty Division makes the entry global.
type Entry struct {
	Division string `json:"division" yaml:"division" bson:"division"`
	Kind     Kind   `json:"kind" yaml:"kind" bson:"kind"`
	TargetID int64  `json:"target_id" yaml:"target_id" bson:"target_id"`
	Name     string `json:"name,omitempty" yaml:"name" bson:"name,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason" bson:"reason,omitempty"`
}

// Store is where blacklist entries come from.
type Store interface {
	Entries(ctx context.Context) ([]Entry, error)
}

type Category string

const (
	CategoryGroup         Category = "blacklisted_group"
	CategoryFriend        Category = "blacklisted_friend"
	CategoryAccount       Category = "blacklisted_account"
	CategoryCrossDivision Category = "cross_division"
)

// Weights is the score added per match in each category.
type Weights map[Category]int

func DefaultWeights() Weights {
	return Weights{
		CategoryGroup:         20,
		CategoryFriend:        10,
		CategoryAccount:       50,
		CategoryCrossDivision: 30,
	}
}

type Match struct {
	Category Category `json:"category"`
	TargetID int64    `json:"target_id"`
	Name     string   `json:"name,omitempty"`
	Division string   `json:"division,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Weight   int      `json:"weight"`
}

type Result struct {
	Score    int      `json:"score"`
	Matches  []Match  `json:"matches"`
	Factors  []string `json:"factors"`
	Warnings []string `json:"warnings"`
}

// Subject is the account being evaluated.
type Subject struct {
	AccountID int64
	GroupIDs  []int64
	FriendIDs []int64
}

type key struct {
	kind Kind
	id   int64
}

// Index is an immutable lookup over a set of entries.
type Index struct {
	byTarget map[key][]Entry
	weights  Weights
}

func NewIndex(entries []Entry, weights Weights) *Index {
	if weights == nil {
		weights = DefaultWeights()
	}
	idx := &Index{byTarget: make(map[key][]Entry, len(entries)), weights: weights}
	for _, e := range entries {
		e.Division = normalizeDivision(e.Division)
		k := key{kind: e.Kind, id: e.TargetID}
		idx.byTarget[k] = append(idx.byTarget[k], e)
	}
	return idx
}

func (idx *Index) Len() int {
	n := 0
	for _, list := range idx.byTarget {
		n += len(list)
	}
	return n
}

// Evaluate returns every match for subject as seen from division. Entries
// from division itself and global entries are local; user entries from any
// other division that name the account are cross-division flags.
func (idx *Index) Evaluate(division string, subject Subject) Result {
	division = normalizeDivision(division)
	res := Result{Matches: []Match{}, Factors: []string{}, Warnings: []string{}}

	local := func(e Entry) bool { return e.Division == "" || e.Division == division }

	for _, gid := range dedupe(subject.GroupIDs) {
		for _, e := range idx.byTarget[key{KindGroup, gid}] {
			if !local(e) {
				continue
			}
			res.add(idx.match(CategoryGroup, e), fmt.Sprintf("Member of blacklisted group %s", label(e)))
		}
	}

	for _, fid := range dedupe(subject.FriendIDs) {
		if fid == subject.AccountID {
			continue
		}
		for _, e := range idx.byTarget[key{KindUser, fid}] {
			if !local(e) {
				continue
			}
			res.add(idx.match(CategoryFriend, e), fmt.Sprintf("Friends with blacklisted user %s", label(e)))
		}
	}

	crossDivisions := make(map[string]struct{})
	for _, e := range idx.byTarget[key{KindUser, subject.AccountID}] {
		if local(e) {
			res.add(idx.match(CategoryAccount, e), "Account is blacklisted")
			continue
		}
		res.add(idx.match(CategoryCrossDivision, e), fmt.Sprintf("Account is blacklisted by division %s", e.Division))
		crossDivisions[e.Division] = struct{}{}
	}

	divisions := make([]string, 0, len(crossDivisions))
	for d := range crossDivisions {
		divisions = append(divisions, d)
	}
	sort.Strings(divisions)
	for _, d := range divisions {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Flagged by division %s", d))
	}
	return res
}

func (idx *Index) match(c Category, e Entry) Match {
	return Match{
		Category: c,
		TargetID: e.TargetID,
		Name:     e.Name,
		Division: e.Division,
		Reason:   e.Reason,
		Weight:   idx.weights[c],
	}
}

func (r *Result) add(m Match, factor string) {
	r.Matches = append(r.Matches, m)
	r.Score += m.Weight
	if m.Reason != "" {
		factor += " (" + m.Reason + ")"
	}
	r.Factors = append(r.Factors, factor)
}

func label(e Entry) string {
	if e.Name != "" {
		return fmt.Sprintf("%s (%d)", e.Name, e.TargetID)
	}
	return fmt.Sprintf("%d", e.TargetID)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeDivision(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// Validate reports the first malformed entry.
func Validate(entries []Entry) error {
	for i, e := range entries {
		if e.Kind != KindGroup && e.Kind != KindUser {
			return fmt.Errorf("entry %d: unknown kind %q", i, e.Kind)
		}
		if e.TargetID <= 0 {
			return fmt.Errorf("entry %d: target id must be positive", i)
		}
	}
	return nil
}
