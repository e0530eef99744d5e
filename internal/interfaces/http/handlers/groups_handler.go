package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/application/query"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

// GroupsHandler serves group profiles and their victim listings.
type GroupsHandler struct {
	victims *query.VictimService
	data    DataSource
}

func NewGroupsHandler(victims *query.VictimService, data DataSource) *GroupsHandler {
	return &GroupsHandler{victims: victims, data: data}
}

// List serves GET /api/v1/groups.
func (h *GroupsHandler) List(c *gin.Context) {
	groups, err := h.data.Groups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, groups)
}

// ByName serves GET /api/v1/groups/:name. Profile names match
// case-insensitively; feed group identifiers are not case-normalized.
func (h *GroupsHandler) ByName(c *gin.Context) {
	name := c.Param("name")
	groups, err := h.data.Groups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for _, g := range groups {
		if strings.EqualFold(g.Name, name) {
			respondOK(c, g)
			return
		}
	}
	respondError(c, errors.New(errors.ErrCodeGroupNotFound, "group not found").
		WithDetail("name="+name))
}

// Victims serves GET /api/v1/groups/:name/victims.
func (h *GroupsHandler) Victims(c *gin.Context) {
	name := c.Param("name")
	page, err := queryInt(c, "page", 1)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", defaultVictimLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	victims, err := h.data.Victims(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.victims.List(victims, query.VictimFilter{Group: name}, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
