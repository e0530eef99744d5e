package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/internal/application/correlation"
	"github.com/frknaykc/dragonseye/internal/domain/rollup"
)

// MapHandler serves the choropleth fill values and the per-country
// drill-down.
type MapHandler struct {
	svc  *correlation.Service
	data DataSource
}

func NewMapHandler(svc *correlation.Service, data DataSource) *MapHandler {
	return &MapHandler{svc: svc, data: data}
}

// Fill serves GET /api/v1/map/fill. The names parameter carries the
// boundary dataset's geometry names, comma separated; each resolves
// through the alias table to a fill value, 0 when unknown. With no
// names the full country rollup is returned keyed by ISO code.
func (h *MapHandler) Fill(c *gin.Context) {
	victims, err := h.data.Victims(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	buckets, err := h.svc.CountriesRollup(victims, correlation.MaxCountryLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	fills := make(map[string]int)
	if names := c.Query("names"); names != "" {
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			fills[name] = h.svc.MapFillValue(name, buckets)
		}
	} else {
		for _, b := range buckets {
			fills[b.Key] = b.Count
		}
	}
	respondOK(c, fills)
}

// Country serves GET /api/v1/country/:code.
func (h *MapHandler) Country(c *gin.Context) {
	victims, err := h.data.Victims(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.svc.CountryDetail(c.Param("code"), victims)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range detail.Groups {
		detail.Groups[i].Percentage = rollup.RoundPercentage(detail.Groups[i].Percentage)
	}
	for i := range detail.Sectors {
		detail.Sectors[i].Percentage = rollup.RoundPercentage(detail.Sectors[i].Percentage)
	}
	respondOK(c, detail)
}
