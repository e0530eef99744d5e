package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/domain/ioc"
	"github.com/frknaykc/dragonseye/pkg/errors"
)

// IOCsHandler derives and serves indicators of compromise.
type IOCsHandler struct {
	data DataSource
}

func NewIOCsHandler(data DataSource) *IOCsHandler {
	return &IOCsHandler{data: data}
}

// List serves GET /api/v1/iocs. Indicators are extracted from the
// ransom-note snapshot and filtered by the optional q, type, and group
// parameters.
func (h *IOCsHandler) List(c *gin.Context) {
	typeFilter := ioc.Type(c.Query("type"))
	if typeFilter != "" && !typeFilter.IsValid() {
		respondError(c, errors.New(errors.CodeInvalidParam, "unknown indicator type").
			WithDetail("type="+string(typeFilter)))
		return
	}

	notes, err := h.data.Notes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	records := ioc.Extract(notes)
	records = ioc.Filter(records, c.Query("q"), typeFilter, c.Query("group"))
	respondOK(c, records)
}
