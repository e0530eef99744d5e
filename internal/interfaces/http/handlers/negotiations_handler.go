package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/domain/negotiation"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

const defaultNegotiationPageSize = 10

// NegotiationsHandler serves the per-group negotiation views.
type NegotiationsHandler struct {
	data DataSource
}

func NewNegotiationsHandler(data DataSource) *NegotiationsHandler {
	return &NegotiationsHandler{data: data}
}

// List serves GET /api/v1/negotiations. Each group pages
// independently: repeated cursor parameters of the form "group:page"
// select that group's page, every other group serves page 1. An
// optional group parameter narrows the response to one group's view.
func (h *NegotiationsHandler) List(c *gin.Context) {
	pageSize, err := queryInt(c, "page_size", defaultNegotiationPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	pageByGroup, err := parseCursors(c.QueryArray("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	chats, err := h.data.Chats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := negotiation.GroupAndPage(chats, pageSize, pageByGroup)
	if err != nil {
		respondError(c, err)
		return
	}

	if group := c.Query("group"); group != "" {
		view, ok := views[group]
		if !ok {
			respondError(c, errors.New(errors.ErrCodeGroupNotFound, "no negotiations for group").
				WithDetail("group="+group))
			return
		}
		respondOK(c, view)
		return
	}
	respondOK(c, views)
}

// parseCursors splits "group:page" cursor values. The split is on the
// last colon; group names never contain one but the rule is cheap to
// keep unambiguous.
func parseCursors(cursors []string) (map[string]int, error) {
	if len(cursors) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(cursors))
	for _, raw := range cursors {
		i := strings.LastIndex(raw, ":")
		if i <= 0 || i == len(raw)-1 {
			return nil, errors.New(errors.CodeInvalidParam, "cursor must be group:page").
				WithDetail("cursor=" + raw)
		}
		page, err := strconv.Atoi(raw[i+1:])
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParam, "cursor page must be an integer").
				WithDetail("cursor=" + raw)
		}
		out[raw[:i]] = page
	}
	return out, nil
}
