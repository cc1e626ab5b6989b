package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/backcheck-backend/internal/blacklist"
	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
)

type failingStore struct{}

func (failingStore) Entries(context.Context) ([]blacklist.Entry, error) {
	return nil, errors.New("store offline")
}

func veteranAggregate(now time.Time) *models.Aggregate {
	created := now.AddDate(-2, 0, 0)
	agg := &models.Aggregate{
		Profile:    models.Profile{ID: 1, Created: &created},
		Counts:     models.Counts{Friends: 50},
		Unverified: []models.Source{},
	}
	for i := 0; i < 400; i++ {
		agg.Badges = append(agg.Badges, models.Badge{ID: int64(i + 1)})
	}
	for i := 0; i < 12; i++ {
		agg.Groups = append(agg.Groups, models.GroupMembership{ID: int64(1000 + i)})
	}
	agg.Friends = []models.Friend{{ID: 500}}
	return agg
}

func TestRiskInputMarksUnverifiedSourcesPartial(t *testing.T) {
	now := time.Now()
	agg := veteranAggregate(now)
	agg.Unverified = []models.Source{models.SourceBadges, models.SourceFriendsCount}

	in := RiskInput(agg, now)

	assert.True(t, in.Badges.Partial)
	assert.False(t, in.Friends.Partial, "friend list still verifies the count")
	assert.False(t, in.AccountAgeDays.Missing)
	assert.GreaterOrEqual(t, in.AccountAgeDays.Value, 700)
}

func TestRiskInputUnknownCreationDate(t *testing.T) {
	agg := veteranAggregate(time.Now())
	agg.Profile.Created = nil

	in := RiskInput(agg, time.Now())
	assert.True(t, in.AccountAgeDays.Missing)
}

func TestEvaluateAggregateWithoutBlacklistMatches(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil, nil, nil)
	eval := svc.EvaluateAggregate(context.Background(), veteranAggregate(time.Now()), "")

	assert.Equal(t, risk.LevelLow, eval.Risk.Level)
	assert.Equal(t, 0, eval.Risk.Score)
	assert.Len(t, eval.Requirements, 4)
	assert.Nil(t, eval.Risk.Checks)
	assert.Empty(t, eval.Blacklist.Matches)
}

func TestEvaluateAggregateBlacklistRaisesLevel(t *testing.T) {
	store := blacklist.NewStaticStore([]blacklist.Entry{
		{Division: "north", Kind: blacklist.KindGroup, TargetID: 1000, Name: "Raiders"},
		{Division: "south", Kind: blacklist.KindUser, TargetID: 1},
		{Kind: blacklist.KindUser, TargetID: 500},
	})
	svc := NewEvaluationService(nil, store, nil, []models.Division{{Tag: "north"}, {Tag: "south"}}, nil)

	eval := svc.EvaluateAggregate(context.Background(), veteranAggregate(time.Now()), "north")

	assert.Equal(t, 0, eval.BaseScore)
	assert.Equal(t, 60, eval.Blacklist.Score)
	assert.Equal(t, 60, eval.Risk.Score)
	assert.Equal(t, risk.LevelHigh, eval.Risk.Level)
	assert.Contains(t, eval.Risk.Warnings, "Flagged by division south")
}

func TestEvaluateAggregateStoreFailureDegrades(t *testing.T) {
	svc := NewEvaluationService(nil, failingStore{}, nil, nil, nil)
	eval := svc.EvaluateAggregate(context.Background(), veteranAggregate(time.Now()), "")

	assert.Equal(t, risk.LevelLow, eval.Risk.Level)
	assert.Contains(t, eval.Risk.Warnings, "Blacklist data unavailable")
}

func TestResolveDivision(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil, []models.Division{{Tag: "north", Label: "North"}}, nil)

	tag, err := svc.ResolveDivision(" North ")
	require.NoError(t, err)
	assert.Equal(t, "north", tag)

	tag, err = svc.ResolveDivision("")
	require.NoError(t, err)
	assert.Equal(t, "", tag)

	_, err = svc.ResolveDivision("west")
	assert.ErrorIs(t, err, ErrUnknownDivision)
}

func TestEvaluateUsesLookup(t *testing.T) {
	created := time.Now().AddDate(0, 0, -30)
	stub := &upstreamStub{created: &created}
	svc := NewEvaluationService(NewLookupService(stub, nil, nil), nil, nil, nil, nil)

	eval, err := svc.Evaluate(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, risk.LevelHigh, eval.Risk.Level)
	assert.Equal(t, int64(3), eval.UserID)
}
