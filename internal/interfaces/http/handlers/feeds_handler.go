package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// FeedsHandler serves the ransom-note and decryptor listings. Both are
// flat feeds with an optional group filter.
type FeedsHandler struct {
	data DataSource
}

func NewFeedsHandler(data DataSource) *FeedsHandler {
	return &FeedsHandler{data: data}
}

// Notes serves GET /api/v1/ransom-notes.
func (h *FeedsHandler) Notes(c *gin.Context) {
	notes, err := h.data.Notes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if group := c.Query("group"); group != "" {
		filtered := make([]threat.RansomNote, 0, len(notes))
		for _, n := range notes {
			if strings.EqualFold(n.GroupName, group) {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	respondOK(c, notes)
}

// Decryptors serves GET /api/v1/decryptors.
func (h *FeedsHandler) Decryptors(c *gin.Context) {
	decryptors, err := h.data.Decryptors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if group := c.Query("group"); group != "" {
		filtered := make([]threat.Decryptor, 0, len(decryptors))
		for _, d := range decryptors {
			if strings.EqualFold(d.GroupName, group) {
				filtered = append(filtered, d)
			}
		}
		decryptors = filtered
	}
	respondOK(c, decryptors)
}
