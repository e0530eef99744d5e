package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// FeedsClient exposes the ransom-note, decryptor, IOC and negotiation
// endpoints.
type FeedsClient struct {
	client *Client
}

// IOC is one deduplicated indicator extracted from the note feed.
type IOC struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	SourceGroup string `json:"source_group"`
	Description string `json:"description"`
}

// NegotiationStats aggregates one group's negotiation partition.
type NegotiationStats struct {
	Total         int `json:"total"`
	PaidCount     int `json:"paid_count"`
	TotalMessages int `json:"total_messages"`
}

// NegotiationView is one group's page of negotiation chats.
type NegotiationView struct {
	GroupName  string                   `json:"group_name"`
	Chats      []threat.NegotiationChat `json:"chats"`
	Stats      NegotiationStats         `json:"stats"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
}

// IOCOptions filters the IOC listing.
type IOCOptions struct {
	Query string
	Type  string
	Group string
}

// Notes fetches the ransom-note feed, optionally scoped to one group.
func (f *FeedsClient) Notes(ctx context.Context, group string) ([]threat.RansomNote, error) {
	path := "/api/v1/ransom-notes"
	if group != "" {
		path += "?group=" + url.QueryEscape(group)
	}
	var out []threat.RansomNote
	if err := f.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decryptors fetches the decryptor feed, optionally scoped to one group.
func (f *FeedsClient) Decryptors(ctx context.Context, group string) ([]threat.Decryptor, error) {
	path := "/api/v1/decryptors"
	if group != "" {
		path += "?group=" + url.QueryEscape(group)
	}
	var out []threat.Decryptor
	if err := f.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IOCs fetches the deduplicated indicator listing.
func (f *FeedsClient) IOCs(ctx context.Context, opts IOCOptions) ([]IOC, error) {
	q := url.Values{}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Group != "" {
		q.Set("group", opts.Group)
	}
	path := "/api/v1/iocs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []IOC
	if err := f.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Negotiations fetches negotiation views for every group. cursors maps
// group names to 1-based page numbers; groups without a cursor start at
// page 1. pageSize <= 0 uses the server default.
func (f *FeedsClient) Negotiations(ctx context.Context, pageSize int, cursors map[string]int) ([]NegotiationView, error) {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	for group, page := range cursors {
		q.Add("cursor", group+":"+strconv.Itoa(page))
	}
	path := "/api/v1/negotiations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []NegotiationView
	if err := f.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GroupNegotiations fetches a single group's negotiation view.
func (f *FeedsClient) GroupNegotiations(ctx context.Context, group string, pageSize, page int) (*NegotiationView, error) {
	q := url.Values{}
	q.Set("group", group)
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if page > 1 {
		q.Add("cursor", group+":"+strconv.Itoa(page))
	}
	var out NegotiationView
	if err := f.client.get(ctx, "/api/v1/negotiations?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
