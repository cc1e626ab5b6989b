package blacklist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Division: "north", Kind: KindGroup, TargetID: 100, Name: "Raiders", Reason: "hostile group"},
		{Division: "", Kind: KindGroup, TargetID: 200, Name: "Exploiters"},
		{Division: "south", Kind: KindGroup, TargetID: 300, Name: "South only"},
		{Division: "north", Kind: KindUser, TargetID: 7},
		{Division: "south", Kind: KindUser, TargetID: 1},
		{Division: "east", Kind: KindUser, TargetID: 1},
	}
}

func TestEvaluateEmptyIndexHasNoMatches(t *testing.T) {
	res := NewIndex(nil, nil).Evaluate("north", Subject{AccountID: 1, GroupIDs: []int64{100}, FriendIDs: []int64{7}})

	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Matches)
	assert.Empty(t, res.Factors)
	assert.Empty(t, res.Warnings)
}

func TestEvaluateLocalAndGlobalMatches(t *testing.T) {
	idx := NewIndex(sampleEntries(), nil)
	res := idx.Evaluate("North", Subject{
		AccountID: 42,
		GroupIDs:  []int64{100, 200, 300, 100},
		FriendIDs: []int64{7, 8},
	})

	weights := DefaultWeights()
	assert.Equal(t, weights[CategoryGroup]*2+weights[CategoryFriend], res.Score)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, CategoryGroup, res.Matches[0].Category)
	assert.Equal(t, int64(100), res.Matches[0].TargetID)
	assert.Equal(t, CategoryFriend, res.Matches[2].Category)
	assert.Contains(t, res.Factors[0], "Raiders (100)")
	assert.Contains(t, res.Factors[0], "hostile group")
	assert.Empty(t, res.Warnings)
}

func TestEvaluateCrossDivisionAddsWarning(t *testing.T) {
	idx := NewIndex(sampleEntries(), nil)
	res := idx.Evaluate("north", Subject{AccountID: 1})

	require.Len(t, res.Matches, 2)
	for _, m := range res.Matches {
		assert.Equal(t, CategoryCrossDivision, m.Category)
	}
	assert.Equal(t, 2*DefaultWeights()[CategoryCrossDivision], res.Score)
	assert.Equal(t, []string{"Flagged by division east", "Flagged by division south"}, res.Warnings)
}

func TestEvaluateOwnDivisionAccountMatchIsNotCrossDivision(t *testing.T) {
	idx := NewIndex(sampleEntries(), nil)
	res := idx.Evaluate("south", Subject{AccountID: 1})

	require.Len(t, res.Matches, 2)
	assert.Equal(t, CategoryAccount, res.Matches[0].Category)
	assert.Equal(t, CategoryCrossDivision, res.Matches[1].Category)
	assert.Equal(t, []string{"Flagged by division east"}, res.Warnings)
}

func TestEvaluateWithoutDivisionTreatsAllDivisionsAsOther(t *testing.T) {
	idx := NewIndex(sampleEntries(), nil)
	res := idx.Evaluate("", Subject{AccountID: 1, GroupIDs: []int64{100, 200}})

	// only the global group is local when no division is selected
	groupMatches := 0
	for _, m := range res.Matches {
		if m.Category == CategoryGroup {
			groupMatches++
			assert.Equal(t, int64(200), m.TargetID)
		}
	}
	assert.Equal(t, 1, groupMatches)
	assert.Len(t, res.Warnings, 2)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`entries:
  - division: north
    kind: group
    target_id: 123
    name: Raiders
    reason: hostile group
  - kind: user
    target_id: 456
`), 0o600))

	store, err := LoadFile(path)
	require.NoError(t, err)

	entries, err := store.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Division: "north", Kind: KindGroup, TargetID: 123, Name: "Raiders", Reason: "hostile group"}, entries[0])
	assert.Equal(t, "", entries[1].Division)
}

func TestLoadFileRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - kind: place\n    target_id: 1\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestStaticStoreReturnsCopy(t *testing.T) {
	store := NewStaticStore(sampleEntries())
	entries, err := store.Entries(context.Background())
	require.NoError(t, err)
	entries[0].TargetID = 999

	again, err := store.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), again[0].TargetID)
}
