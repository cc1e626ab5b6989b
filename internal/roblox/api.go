package roblox

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/AnshRaj112/backcheck-backend/internal/models"
)

// GetUser fetches the public profile. The avatar is not included.
func (c *Client) GetUser(ctx context.Context, userID int64) (*models.Profile, error) {
	var body record
	u := fmt.Sprintf("%s/v1/users/%d", c.endpoints.Users, userID)
	if err := c.getJSON(ctx, "get user", u, &body); err != nil {
		return nil, err
	}

	id := body.Int64(profileFields, "id")
	if id == 0 {
		id = userID
	}
	return &models.Profile{
		ID:               id,
		Username:         body.String(profileFields, "username"),
		DisplayName:      body.String(profileFields, "displayName"),
		Description:      body.String(profileFields, "description"),
		Created:          body.Time(profileFields, "created"),
		IsBanned:         body.Bool(profileFields, "isBanned"),
		HasVerifiedBadge: body.Bool(profileFields, "hasVerifiedBadge"),
	}, nil
}

// GetAvatarHeadshot returns the headshot thumbnail URL for userID.
func (c *Client) GetAvatarHeadshot(ctx context.Context, userID int64) (string, error) {
	q := url.Values{}
	q.Set("userIds", strconv.FormatInt(userID, 10))
	q.Set("size", "150x150")
	q.Set("format", "Png")
	q.Set("isCircular", "false")

	var body record
	if err := c.getJSON(ctx, "get avatar", buildURL(c.endpoints.Thumbnails, "/v1/users/avatar-headshot", q), &body); err != nil {
		return "", err
	}
	for _, item := range pageItems(body) {
		if target := item.Int64(thumbnailFields, "targetId"); target != 0 && target != userID {
			continue
		}
		if imageURL := item.String(thumbnailFields, "imageUrl"); imageURL != "" {
			return imageURL, nil
		}
	}
	return "", &APIError{Op: "get avatar", Err: errors.New("no thumbnail available")}
}

func (c *Client) countAt(ctx context.Context, op string, u string) (int, error) {
	var body struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, op, u, &body); err != nil {
		return 0, err
	}
	if body.Count < 0 {
		return 0, nil
	}
	return body.Count, nil
}

func (c *Client) GetFriendsCount(ctx context.Context, userID int64) (int, error) {
	return c.countAt(ctx, "get friends count", fmt.Sprintf("%s/v1/users/%d/friends/count", c.endpoints.Friends, userID))
}

func (c *Client) GetFollowersCount(ctx context.Context, userID int64) (int, error) {
	return c.countAt(ctx, "get followers count", fmt.Sprintf("%s/v1/users/%d/followers/count", c.endpoints.Friends, userID))
}

func (c *Client) GetFollowingCount(ctx context.Context, userID int64) (int, error) {
	return c.countAt(ctx, "get following count", fmt.Sprintf("%s/v1/users/%d/followings/count", c.endpoints.Friends, userID))
}

func (c *Client) ListFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	base := fmt.Sprintf("%s/v1/users/%d/friends", c.endpoints.Friends, userID)
	return collect(ctx, c, "list friends", base, nil, func(r record) models.Friend {
		return models.Friend{
			ID:          r.Int64(friendFields, "id"),
			Username:    r.String(friendFields, "username"),
			DisplayName: r.String(friendFields, "displayName"),
		}
	})
}

func (c *Client) ListGroups(ctx context.Context, userID int64) ([]models.GroupMembership, error) {
	base := fmt.Sprintf("%s/v2/users/%d/groups/roles", c.endpoints.Groups, userID)
	return collect(ctx, c, "list groups", base, nil, func(r record) models.GroupMembership {
		return models.GroupMembership{
			ID:          r.Int64(groupFields, "id"),
			Name:        r.String(groupFields, "name"),
			Role:        r.String(groupFields, "role"),
			Rank:        r.Int64(groupFields, "rank"),
			MemberCount: r.Int64(groupFields, "memberCount"),
		}
	})
}

func (c *Client) ListBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	base := fmt.Sprintf("%s/v1/users/%d/badges", c.endpoints.Badges, userID)
	q := url.Values{}
	q.Set("sortOrder", "Asc")
	return collect(ctx, c, "list badges", base, q, func(r record) models.Badge {
		return models.Badge{
			ID:          r.Int64(badgeFields, "id"),
			Name:        r.String(badgeFields, "name"),
			Description: r.String(badgeFields, "description"),
		}
	})
}

func (c *Client) ListUsernameHistory(ctx context.Context, userID int64) ([]models.PastUsername, error) {
	base := fmt.Sprintf("%s/v1/users/%d/username-history", c.endpoints.Users, userID)
	q := url.Values{}
	q.Set("sortOrder", "Asc")
	return collect(ctx, c, "list username history", base, q, func(r record) models.PastUsername {
		return models.PastUsername{Username: r.String(usernameHistoryFields, "username")}
	})
}
