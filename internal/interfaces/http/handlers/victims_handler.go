package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/application/query"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

const defaultVictimLimit = 20

// VictimsHandler serves the victim listing endpoints.
type VictimsHandler struct {
	svc  *query.VictimService
	data DataSource
}

func NewVictimsHandler(svc *query.VictimService, data DataSource) *VictimsHandler {
	return &VictimsHandler{svc: svc, data: data}
}

func (h *VictimsHandler) filterFromQuery(c *gin.Context) query.VictimFilter {
	return query.VictimFilter{
		Group:   c.Query("group"),
		Country: c.Query("country"),
		Sector:  c.Query("sector"),
		Sort:    c.Query("sort"),
	}
}

// List serves GET /api/v1/victims.
func (h *VictimsHandler) List(c *gin.Context) {
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

	result, err := h.svc.List(victims, h.filterFromQuery(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Search serves GET /api/v1/victims/search.
func (h *VictimsHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, errors.New(errors.CodeInvalidParam, "q is required"))
		return
	}
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

	result, err := h.svc.Search(victims, q, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ByIndex serves GET /api/v1/victims/:index. The index addresses the
// default-sorted unfiltered set, matching the positions List reports.
func (h *VictimsHandler) ByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeVictimIndexInvalid, "index must be an integer").
			WithDetail("index="+c.Param("index")))
		return
	}

	victims, err := h.data.Victims(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	victim, err := h.svc.ByIndex(victims, query.VictimFilter{}, index)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, victim)
}
