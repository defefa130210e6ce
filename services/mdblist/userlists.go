package mdblist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bardbit/stremio-mdblist-importer/models"
)

const userListsExcerptLen = 100

// ResolveOwnedLists returns the lists owned by the account behind apiKey. Failures
// are *ResolveError values; "no lists" is an empty, non-nil slice.
func (c *Client) ResolveOwnedLists(ctx context.Context, apiKey string) ([]models.UserList, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ResolveError{Kind: KindMissingCredential}
	}

	target, err := c.userListsTarget(apiKey)
	if err != nil {
		return nil, &ResolveError{Kind: KindUpstreamUnreachable, Err: err}
	}

	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, &ResolveError{Kind: KindUpstreamUnreachable, Err: err}
	}
	return classifyUserLists(resp)
}

func (c *Client) userListsTarget(apiKey string) (string, error) {
	u, err := url.Parse(c.userListsURL)
	if err != nil {
		return "", fmt.Errorf("parse user lists url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func classifyUserLists(resp *response) ([]models.UserList, error) {
	if !resp.ok() {
		text := excerpt(resp.body, userListsExcerptLen)
		if text == "" {
			text = http.StatusText(resp.status)
		}
		return nil, &ResolveError{Kind: KindUpstreamRejected, Status: resp.status, Excerpt: text}
	}

	if !isJSONContent(resp.contentType, "text/javascript", "application/javascript") {
		lower := strings.ToLower(string(resp.body))
		switch {
		case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "invalid apikey"):
			return nil, &ResolveError{Kind: KindInvalidCredential, Status: resp.status}
		case strings.Contains(lower, "no lists found"):
			return []models.UserList{}, nil
		}
		return nil, &ResolveError{
			Kind:        KindUnexpectedResponseShape,
			Status:      resp.status,
			ContentType: resp.contentType,
			Excerpt:     excerpt(resp.body, userListsExcerptLen),
		}
	}

	lists, err := decodeUserLists(resp.body)
	if err != nil {
		return nil, &ResolveError{
			Kind:    KindInvalidResponseFormat,
			Status:  resp.status,
			Excerpt: excerpt(resp.body, userListsExcerptLen),
			Err:     err,
		}
	}
	return lists, nil
}

// decodeUserLists accepts {"lists": [...]}, a bare array, or the empty-account
// marker {"lists": null, "count": 0}.
func decodeUserLists(body []byte) ([]models.UserList, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	switch trimmed[0] {
	case '[':
		return decodeUserListRecords(trimmed)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		raw, present := obj["lists"]
		value := bytes.TrimSpace(raw)
		if present && len(value) > 0 && value[0] == '[' {
			return decodeUserListRecords(value)
		}
		if present && (len(value) == 0 || string(value) == "null") && isZeroNumber(obj["count"]) {
			return []models.UserList{}, nil
		}
		return nil, errors.New("response has no lists array")
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

// decodeUserListRecords decodes each list on its own; records that are not objects
// are skipped.
func decodeUserListRecords(data []byte) ([]models.UserList, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lists := make([]models.UserList, 0, len(raw))
	skipped := 0
	for _, rec := range raw {
		var l models.UserList
		if err := json.Unmarshal(rec, &l); err != nil {
			skipped++
			continue
		}
		lists = append(lists, l)
	}
	if skipped > 0 {
		log.Printf("[mdblist] skipped %d malformed user list records", skipped)
	}
	return lists, nil
}

func isZeroNumber(raw json.RawMessage) bool {
	value := strings.TrimSpace(string(raw))
	if value == "" || value[0] == '"' {
		return false
	}
	n, err := strconv.ParseFloat(value, 64)
	return err == nil && n == 0
}
