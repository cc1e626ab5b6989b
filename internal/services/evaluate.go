package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/backcheck-backend/internal/blacklist"
	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
)

var ErrUnknownDivision = errors.New("unknown division")

// RiskInput turns an aggregate into scorer input. Sources that failed make
// their metric a partial (lower bound) observation.
func RiskInput(agg *models.Aggregate, now time.Time) risk.Input {
	in := risk.Input{AccountAgeDays: risk.Unknown()}
	if days, ok := agg.AccountAgeDays(now); ok {
		in.AccountAgeDays = risk.Known(days)
	}

	in.Badges = observe(len(agg.Badges), agg.IsVerified(models.SourceBadges))
	in.Groups = observe(len(agg.Groups), agg.IsVerified(models.SourceGroups))

	friendsVerified := agg.IsVerified(models.SourceFriendsCount) || agg.IsVerified(models.SourceFriends)
	in.Friends = observe(agg.Counts.Friends, friendsVerified)
	return in
}

func observe(v int, verified bool) risk.Observation {
	if verified {
		return risk.Known(v)
	}
	return risk.Partial(v)
}

// Evaluation is the answer of the evaluate endpoint.
type Evaluation struct {
	UserID       int64            `json:"user_id"`
	Division     string           `json:"division"`
	Blacklist    blacklist.Result `json:"blacklist"`
	Risk         risk.Result      `json:"risk"`
	BaseScore    int              `json:"base_score"`
	Requirements []risk.Check     `json:"requirements"`
	Counts       models.Counts    `json:"counts"`
	Unverified   []models.Source  `json:"unverified"`
}

type EvaluationService struct {
	lookup    *LookupService
	store     blacklist.Store
	weights   blacklist.Weights
	scorer    *risk.Scorer
	divisions []models.Division
	logger    *zap.Logger
	now       func() time.Time
}

func NewEvaluationService(lookup *LookupService, store blacklist.Store, scorer *risk.Scorer, divisions []models.Division, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = blacklist.NewStaticStore(nil)
	}
	if scorer == nil {
		scorer = risk.NewDefault()
	}
	return &EvaluationService{
		lookup:    lookup,
		store:     store,
		weights:   blacklist.DefaultWeights(),
		scorer:    scorer,
		divisions: divisions,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *EvaluationService) Divisions() []models.Division {
	return append([]models.Division(nil), s.divisions...)
}

// ResolveDivision normalizes tag and checks it against the configured
// divisions. An empty tag is allowed and means "no division".
func (s *EvaluationService) ResolveDivision(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || len(s.divisions) == 0 {
		return tag, nil
	}
	for _, d := range s.divisions {
		if strings.EqualFold(d.Tag, tag) {
			return tag, nil
		}
	}
	return "", ErrUnknownDivision
}

// BaseRisk scores an aggregate without the blacklist layer.
func (s *EvaluationService) BaseRisk(agg *models.Aggregate) risk.Result {
	return s.scorer.Score(RiskInput(agg, s.now()))
}

// Evaluate runs the lookup, scores it and layers blacklist matches on top.
func (s *EvaluationService) Evaluate(ctx context.Context, userID int64, division string) (*Evaluation, error) {
	division, err := s.ResolveDivision(division)
	if err != nil {
		return nil, err
	}

	agg, err := s.lookup.Lookup(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return s.EvaluateAggregate(ctx, agg, division), nil
}

// EvaluateAggregate scores an aggregate that was already fetched. division
// must already be resolved.
func (s *EvaluationService) EvaluateAggregate(ctx context.Context, agg *models.Aggregate, division string) *Evaluation {
	base := s.BaseRisk(agg)

	bl := blacklist.Result{Matches: []blacklist.Match{}, Factors: []string{}, Warnings: []string{}}
	entries, err := s.store.Entries(ctx)
	if err != nil {
		s.logger.Warn("blacklist store unavailable", zap.Int64("user_id", agg.Profile.ID), zap.Error(err))
		bl.Warnings = append(bl.Warnings, "Blacklist data unavailable")
	} else {
		bl = blacklist.NewIndex(entries, s.weights).Evaluate(division, blacklist.Subject{
			AccountID: agg.Profile.ID,
			GroupIDs:  agg.GroupIDs(),
			FriendIDs: agg.FriendIDs(),
		})
	}

	combined := s.scorer.Combine(base, bl.Score, bl.Factors, bl.Warnings)
	requirements := combined.Checks
	combined.Checks = nil

	return &Evaluation{
		UserID:       agg.Profile.ID,
		Division:     division,
		Blacklist:    bl,
		Risk:         combined,
		BaseScore:    base.Score,
		Requirements: requirements,
		Counts:       agg.Counts,
		Unverified:   agg.Unverified,
	}
}
