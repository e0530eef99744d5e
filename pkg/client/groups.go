package client

import (
	"context"
	"net/url"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// GroupsClient exposes the threat-group endpoints.
type GroupsClient struct {
	client *Client
}

// List fetches all known group profiles.
func (g *GroupsClient) List(ctx context.Context) ([]threat.GroupProfile, error) {
	var out []threat.GroupProfile
	if err := g.client.get(ctx, "/api/v1/groups", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByName fetches one group profile. The match is case-insensitive.
func (g *GroupsClient) ByName(ctx context.Context, name string) (*threat.GroupProfile, error) {
	var out threat.GroupProfile
	if err := g.client.get(ctx, "/api/v1/groups/"+url.PathEscape(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Victims fetches the victim listing scoped to one group.
func (g *GroupsClient) Victims(ctx context.Context, name string, opts ListOptions) (*VictimPage, error) {
	var out VictimPage
	path := "/api/v1/groups/" + url.PathEscape(name) + "/victims" + opts.query()
	if err := g.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
