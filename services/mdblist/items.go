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
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bardbit/stremio-mdblist-importer/models"
)

// SourceOutcome is the result of fetching one list. Items is empty whenever Err is
// set. Err is diagnostic only; a failed list never fails a catalog request.
type SourceOutcome struct {
	Slug  string
	Items []models.ListItem
	Err   error
}

// Failed reports whether the list could not be fetched.
func (o SourceOutcome) Failed() bool {
	return o.Err != nil
}

// FetchItems fetches the items of one list. It never returns an error: any failure
// is folded into an outcome with no items.
func (c *Client) FetchItems(ctx context.Context, slug, apiKey string) (outcome SourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[mdblist] panic fetching list %q: %v", slug, r)
			outcome = SourceOutcome{Slug: slug, Err: fmt.Errorf("panic fetching list: %v", r)}
		}
	}()

	items, err := c.fetchItems(ctx, slug, apiKey)
	if err != nil {
		log.Printf("[mdblist] list %q contributed no items: %v", slug, err)
		return SourceOutcome{Slug: slug, Err: err}
	}
	return SourceOutcome{Slug: slug, Items: items}
}

func (c *Client) fetchItems(ctx context.Context, slug, apiKey string) ([]models.ListItem, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, errors.New("empty list identifier")
	}

	resp, err := c.get(ctx, c.itemsURL(slug, apiKey))
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, fmt.Errorf("mdblist api error: %d %s: %s", resp.status, http.StatusText(resp.status), excerpt(resp.body, 200))
	}

	if !isJSONContent(resp.contentType) {
		detected := mimetype.Detect(resp.body)
		return nil, fmt.Errorf("unexpected content-type %q (body sniffed as %s): %s",
			resp.contentType, detected.String(), excerpt(resp.body, 200))
	}

	items, dropped, err := decodeListItems(resp.body)
	if err != nil {
		return nil, fmt.Errorf("mdblist decode error: %w", err)
	}
	if dropped > 0 {
		log.Printf("[mdblist] list %q: skipped %d malformed records", slug, dropped)
	}
	return items, nil
}

// itemsURL builds {base}/{slug}/items?apiKey=. Slugs of the form owner/list keep
// their slash; each segment is escaped on its own.
func (c *Client) itemsURL(slug, apiKey string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(slug), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	query := url.Values{"apiKey": {apiKey}}
	return c.itemsBaseURL + "/" + strings.Join(segments, "/") + "/items?" + query.Encode()
}

// decodeListItems accepts {"items": [...]}, {"movies": [...], "shows": [...]} or a
// bare array. Records are decoded one by one so a malformed record is skipped
// instead of failing the whole list; the number skipped is returned.
func decodeListItems(body []byte) ([]models.ListItem, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty body")
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, 0, err
		}
	case '{':
		var envelope struct {
			Items  []json.RawMessage `json:"items"`
			Movies []json.RawMessage `json:"movies"`
			Shows  []json.RawMessage `json:"shows"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, 0, err
		}
		if envelope.Items != nil {
			records = envelope.Items
		} else {
			records = append(envelope.Movies, envelope.Shows...)
		}
	default:
		return nil, 0, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}

	items := make([]models.ListItem, 0, len(records))
	dropped := 0
	for _, raw := range records {
		var item models.ListItem
		if err := json.Unmarshal(raw, &item); err != nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}
