package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// VictimsClient exposes the victim listing and lookup endpoints.
type VictimsClient struct {
	client *Client
}

// VictimPage is one page of the victim listing.
type VictimPage struct {
	Victims    []threat.Victim `json:"victims"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// ListOptions filters and pages the victim listing. Zero values are
// omitted and fall back to server defaults.
type ListOptions struct {
	Group   string
	Country string
	Sector  string
	Search  string
	Sort    string
	Page    int
	Limit   int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Group != "" {
		q.Set("group", o.Group)
	}
	if o.Country != "" {
		q.Set("country", o.Country)
	}
	if o.Sector != "" {
		q.Set("sector", o.Sector)
	}
	if o.Search != "" {
		q.Set("q", o.Search)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List fetches a filtered, paged victim listing.
func (v *VictimsClient) List(ctx context.Context, opts ListOptions) (*VictimPage, error) {
	var out VictimPage
	if err := v.client.get(ctx, "/api/v1/victims"+opts.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search fetches victims matching the free-text query.
func (v *VictimsClient) Search(ctx context.Context, query string, opts ListOptions) (*VictimPage, error) {
	opts.Search = query
	var out VictimPage
	if err := v.client.get(ctx, "/api/v1/victims/search"+opts.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByIndex fetches the victim at a 1-based position in the default
// listing order.
func (v *VictimsClient) ByIndex(ctx context.Context, index int) (*threat.Victim, error) {
	var out threat.Victim
	if err := v.client.get(ctx, "/api/v1/victims/"+strconv.Itoa(index), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
