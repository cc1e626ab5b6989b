package roblox

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// record is one decoded upstream object. Numbers stay json.Number so that
// 64-bit IDs survive decoding.
type record map[string]interface{}

// fallback lists upstream keys in preference order. A dotted key walks
// nested objects ("group.id").
type fallback []string

// fieldMap maps an output field to its ordered fallback chain.
type fieldMap map[string]fallback

var profileFields = fieldMap{
	"id":               {"id", "userId"},
	"username":         {"name", "username"},
	"displayName":      {"displayName", "display_name", "name"},
	"description":      {"description", "bio", "blurb"},
	"created":          {"created", "createdAt", "created_at"},
	"isBanned":         {"isBanned", "is_banned"},
	"hasVerifiedBadge": {"hasVerifiedBadge"},
}

var friendFields = fieldMap{
	"id":          {"id", "userId"},
	"username":    {"name", "username"},
	"displayName": {"displayName", "display_name", "name"},
}

var groupFields = fieldMap{
	"id":          {"group.id", "groupId", "id"},
	"name":        {"group.name", "groupName", "name"},
	"role":        {"role.name", "roleName"},
	"rank":        {"role.rank", "rank"},
	"memberCount": {"group.memberCount", "memberCount"},
}

var badgeFields = fieldMap{
	"id":          {"id", "badgeId"},
	"name":        {"name", "displayName"},
	"description": {"description", "displayDescription"},
}

var usernameHistoryFields = fieldMap{
	"username": {"name", "username"},
}

var thumbnailFields = fieldMap{
	"targetId": {"targetId", "id"},
	"imageUrl": {"imageUrl", "url"},
	"state":    {"state"},
}

func (r record) lookup(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// first returns the first value in chain that is present and non-empty.
func (r record) first(chain fallback) (interface{}, bool) {
	for _, key := range chain {
		v, ok := r.lookup(key)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r record) String(fields fieldMap, name string) string {
	v, ok := r.first(fields[name])
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func (r record) Int64(fields fieldMap, name string) int64 {
	v, ok := r.first(fields[name])
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	case float64:
		return int64(t)
	}
	return 0
}

func (r record) Bool(fields fieldMap, name string) bool {
	v, ok := r.first(fields[name])
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

// Time parses an RFC 3339 timestamp. Unparseable values are reported as absent.
func (r record) Time(fields fieldMap, name string) *time.Time {
	s := r.String(fields, name)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
