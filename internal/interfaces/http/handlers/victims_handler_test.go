package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/application/query"
	"github.com/frknaykc/dragonseye/internal/domain/country"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

func newVictimsHandler(data *fakeData) *VictimsHandler {
	svc := query.NewVictimService(country.NewResolver(), nil)
	return NewVictimsHandler(svc, data)
}

func registerVictimRoutes(h *VictimsHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/v1/victims", h.List)
		r.GET("/api/v1/victims/search", h.Search)
		r.GET("/api/v1/victims/:index", h.ByIndex)
	}
}

func TestVictimsListDefaultSort(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims", registerVictimRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var page query.VictimPage
	decodeData(t, rec, &page)
	require.Len(t, page.Victims, 4)
	assert.Equal(t, "Acme Corp", page.Victims[0].PostTitle)
	assert.Equal(t, 1, page.Victims[0].Index)
	assert.Equal(t, 4, page.Total)
}

func TestVictimsListCountryFilterUsesAliases(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims?country=United%20States", registerVictimRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var page query.VictimPage
	decodeData(t, rec, &page)
	// "USA" and "US" records both match the alias.
	assert.Equal(t, 2, page.Total)
}

func TestVictimsListRejectsBadLimit(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims?limit=1000", registerVictimRoutes(h))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INTEL_002", errorCode(t, rec))
}

func TestVictimsSearchRequiresQuery(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims/search", registerVictimRoutes(h))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVictimsSearchMatchesTitle(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims/search?q=initech", registerVictimRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var page query.VictimPage
	decodeData(t, rec, &page)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Initech", page.Victims[0].PostTitle)
}

func TestVictimsByIndex(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims/2", registerVictimRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var victim threat.Victim
	decodeData(t, rec, &victim)
	assert.Equal(t, "Globex", victim.PostTitle)
	assert.Equal(t, 2, victim.Index)
}

func TestVictimsByIndexOutOfRange(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims/99", registerVictimRoutes(h))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "VIC_001", errorCode(t, rec))
}

func TestVictimsByIndexNotAnInteger(t *testing.T) {
	h := newVictimsHandler(&fakeData{victims: fixtureVictims()})

	rec := perform(t, http.MethodGet, "/api/v1/victims/abc", registerVictimRoutes(h))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VIC_002", errorCode(t, rec))
}
