package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/backcheck-backend/internal/models"
)

var ErrInvalidUserID = errors.New("invalid user id")

// Upstream is the read-only platform API the lookup aggregates.
type Upstream interface {
	GetUser(ctx context.Context, userID int64) (*models.Profile, error)
	GetAvatarHeadshot(ctx context.Context, userID int64) (string, error)
	GetFriendsCount(ctx context.Context, userID int64) (int, error)
	GetFollowersCount(ctx context.Context, userID int64) (int, error)
	GetFollowingCount(ctx context.Context, userID int64) (int, error)
	ListFriends(ctx context.Context, userID int64) ([]models.Friend, error)
	ListGroups(ctx context.Context, userID int64) ([]models.GroupMembership, error)
	ListBadges(ctx context.Context, userID int64) ([]models.Badge, error)
	ListUsernameHistory(ctx context.Context, userID int64) ([]models.PastUsername, error)
}

const (
	ProgressOK         = "ok"
	ProgressUnverified = "unverified"
	ProgressCached     = "cached"
)

// Progress reports that one source finished.
type Progress struct {
	Source models.Source `json:"source"`
	Status string        `json:"status"`
	Count  int           `json:"count"`
}

// ProgressFunc receives progress events in order. It may be nil.
type ProgressFunc func(Progress)

type LookupService struct {
	upstream Upstream
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
}

func NewLookupService(upstream Upstream, cache *CacheService, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// ParseUserID validates a user-supplied account identifier.
func ParseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidUserID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

func lookupCacheKey(userID int64) string {
	return CacheKey("lookup", strconv.FormatInt(userID, 10))
}

// Lookup fetches everything known about userID. Only the profile fetch can
// fail the lookup; every other source degrades to an empty value and is
// listed in Aggregate.Unverified.
func (s *LookupService) Lookup(ctx context.Context, userID int64, progress ProgressFunc) (*models.Aggregate, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if progress == nil {
		progress = func(Progress) {}
	}
	log := s.logger.With(zap.Int64("user_id", userID))

	var cached models.Aggregate
	hit, err := s.cache.Get(ctx, lookupCacheKey(userID), &cached)
	if err != nil {
		log.Warn("lookup cache read failed", zap.Error(err))
	}
	if hit {
		progress(Progress{Source: models.SourceProfile, Status: ProgressCached})
		return &cached, nil
	}

	profile, err := s.upstream.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %d: %w", userID, err)
	}
	progress(Progress{Source: models.SourceProfile, Status: ProgressOK, Count: 1})

	agg := &models.Aggregate{
		Profile:         *profile,
		Friends:         []models.Friend{},
		Groups:          []models.GroupMembership{},
		Badges:          []models.Badge{},
		UsernameHistory: []models.PastUsername{},
		Unverified:      []models.Source{},
	}

	degrade := func(source models.Source, count int, err error) {
		if err == nil {
			progress(Progress{Source: source, Status: ProgressOK, Count: count})
			return
		}
		log.Warn("secondary source unavailable", zap.String("source", string(source)), zap.Error(err))
		agg.Unverified = append(agg.Unverified, source)
		progress(Progress{Source: source, Status: ProgressUnverified, Count: count})
	}

	avatar, err := s.upstream.GetAvatarHeadshot(ctx, userID)
	if err == nil && avatar != "" {
		agg.Profile.AvatarURL = &avatar
		degrade(models.SourceAvatar, 1, nil)
	} else {
		degrade(models.SourceAvatar, 0, err)
	}

	counts := s.fetchCounts(ctx, userID)
	degrade(models.SourceFriendsCount, counts[models.SourceFriendsCount].value, counts[models.SourceFriendsCount].err)
	degrade(models.SourceFollowers, counts[models.SourceFollowers].value, counts[models.SourceFollowers].err)
	degrade(models.SourceFollowing, counts[models.SourceFollowing].value, counts[models.SourceFollowing].err)
	agg.Counts.Followers = counts[models.SourceFollowers].value
	agg.Counts.Following = counts[models.SourceFollowing].value

	friends, err := s.upstream.ListFriends(ctx, userID)
	if friends != nil {
		agg.Friends = friends
	}
	degrade(models.SourceFriends, len(agg.Friends), err)

	groups, err := s.upstream.ListGroups(ctx, userID)
	if groups != nil {
		agg.Groups = groups
	}
	degrade(models.SourceGroups, len(agg.Groups), err)

	badges, err := s.upstream.ListBadges(ctx, userID)
	if badges != nil {
		agg.Badges = badges
	}
	degrade(models.SourceBadges, len(agg.Badges), err)

	history, err := s.upstream.ListUsernameHistory(ctx, userID)
	if history != nil {
		agg.UsernameHistory = history
	}
	degrade(models.SourceUsernameHistory, len(agg.UsernameHistory), err)

	if counts[models.SourceFriendsCount].err == nil {
		agg.Counts.Friends = counts[models.SourceFriendsCount].value
	} else {
		agg.Counts.Friends = len(agg.Friends)
	}
	agg.Counts.Groups = len(agg.Groups)
	agg.Counts.Badges = len(agg.Badges)
	agg.FetchedAt = s.now().UTC()

	if agg.Complete() {
		if err := s.cache.Set(ctx, lookupCacheKey(userID), agg); err != nil {
			log.Warn("lookup cache write failed", zap.Error(err))
		}
	}
	return agg, nil
}

type countResult struct {
	value int
	err   error
}

// fetchCounts reads the three independent counters concurrently.
func (s *LookupService) fetchCounts(ctx context.Context, userID int64) map[models.Source]countResult {
	fetchers := map[models.Source]func(context.Context, int64) (int, error){
		models.SourceFriendsCount: s.upstream.GetFriendsCount,
		models.SourceFollowers:    s.upstream.GetFollowersCount,
		models.SourceFollowing:    s.upstream.GetFollowingCount,
	}

	var (
		mu      sync.Mutex
		results = make(map[models.Source]countResult, len(fetchers))
		g       errgroup.Group
	)
	for source, fetch := range fetchers {
		source, fetch := source, fetch
		g.Go(func() error {
			n, err := fetch(ctx, userID)
			if err != nil {
				n = 0
			}
			mu.Lock()
			results[source] = countResult{value: n, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
