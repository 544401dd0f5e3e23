package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/tidwall/gjson"
)

// LinksTable reads and writes the links table through PostgREST.
type LinksTable struct {
	client *Client
	table  string
}

type linkInsert struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

func (t *LinksTable) InsertLink(ctx context.Context, userID, title, linkURL string) (*internal.Link, error) {
	body, err := json.Marshal(linkInsert{UserID: userID, Title: title, URL: linkURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("Prefer", "return=representation")

	resp, err := t.client.do(ctx, http.MethodPost, "/rest/v1/"+url.PathEscape(t.table), bytes.NewReader(body), header, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, resp.Body)
	}

	rows := gjson.ParseBytes(resp.Body).Array()
	if len(rows) == 0 {
		return nil, nil
	}

	link, err := parseLinkRow(rows[0])
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (t *LinksTable) ListLinks(ctx context.Context, userID string, from, to int) ([]internal.Link, int, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("user_id", "eq."+userID)
	params.Set("order", "created_at.desc")
	params.Set("offset", strconv.Itoa(from))
	params.Set("limit", strconv.Itoa(to-from+1))

	header := http.Header{}
	header.Set("Prefer", "count=exact")

	resp, err := t.client.do(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(t.table)+"?"+params.Encode(), nil, header, "")
	if err != nil {
		return nil, 0, err
	}

	total, hasTotal := parseContentRangeTotal(resp.Header.Get("Content-Range"))

	// PostgREST answers 416 when the offset is past the last row; that is an empty page.
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return []internal.Link{}, total, nil
	}
	if resp.StatusCode >= 400 {
		return nil, 0, parseError(resp.StatusCode, resp.Body)
	}

	rows := gjson.ParseBytes(resp.Body).Array()
	links := make([]internal.Link, 0, len(rows))
	for _, row := range rows {
		link, err := parseLinkRow(row)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, link)
	}

	if !hasTotal {
		total = from + len(links)
	}

	return links, total, nil
}

func parseLinkRow(row gjson.Result) (internal.Link, error) {
	createdAt, err := parseTimestamp(row.Get("created_at").String())
	if err != nil {
		return internal.Link{}, fmt.Errorf("parse created_at: %w", err)
	}

	return internal.Link{
		ID:        row.Get("id").String(),
		UserID:    row.Get("user_id").String(),
		Title:     row.Get("title").String(),
		URL:       row.Get("url").String(),
		CreatedAt: createdAt,
	}, nil
}

// naiveTimestampLayout matches "timestamp without time zone" columns.
const naiveTimestampLayout = "2006-01-02T15:04:05.999999999"

// parseTimestamp accepts RFC 3339 timestamps and offset-less ones, which are
// taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if naive, naiveErr := time.ParseInLocation(naiveTimestampLayout, s, time.UTC); naiveErr == nil {
		return naive, nil
	}
	return time.Time{}, err
}

// parseContentRangeTotal reads the total from "0-9/57" or "*/57". A missing
// header or an unknown total ("0-9/*") reports false.
func parseContentRangeTotal(header string) (int, bool) {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
