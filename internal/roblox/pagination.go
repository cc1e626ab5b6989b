package roblox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

var pageFields = fieldMap{
	"nextCursor": {"nextPageCursor", "NextCursor", "next_cursor"},
}

var pageDataKeys = []string{"data", "PageItems"}

// collect walks a cursor-paginated listing until the upstream stops
// returning a cursor. On a failed page it returns the entries gathered so
// far together with the error.
func collect[T any](ctx context.Context, c *Client, op string, base string, query url.Values, convert func(record) T) ([]T, error) {
	out := make([]T, 0)
	seen := make(map[string]struct{})
	cursor := ""

	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(c.pageLimit))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var body record
		if err := c.getJSON(ctx, op, buildURL(base, "", q), &body); err != nil {
			return out, err
		}

		for _, item := range pageItems(body) {
			out = append(out, convert(item))
		}

		next := body.String(pageFields, "nextCursor")
		if next == "" {
			return out, nil
		}
		if _, dup := seen[next]; dup {
			return out, nil
		}
		if c.maxPages > 0 && page >= c.maxPages {
			return out, &APIError{Op: op, Err: fmt.Errorf("stopped after %d pages", page)}
		}
		seen[next] = struct{}{}
		cursor = next
	}
}

func pageItems(body record) []record {
	for _, key := range pageDataKeys {
		raw, ok := body[key].([]interface{})
		if !ok {
			continue
		}
		items := make([]record, 0, len(raw))
		for _, entry := range raw {
			if obj, ok := entry.(map[string]interface{}); ok {
				items = append(items, record(obj))
			}
		}
		return items
	}
	return nil
}
