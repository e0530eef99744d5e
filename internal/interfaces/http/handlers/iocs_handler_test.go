package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/domain/ioc"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

func fixtureNotes() []threat.RansomNote {
	return []threat.RansomNote{
		{GroupName: "lockbit3", Filename: "restore-my-files.txt", Extensions: []string{".lockbit"}},
		{GroupName: "lockbit3", Filename: "restore-my-files.txt", Extensions: []string{".lockbit", ".lb3"}},
		{GroupName: "akira", Filename: "akira_readme.txt", Extensions: []string{".akira"}},
	}
}

func registerIOCRoutes(h *IOCsHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/v1/iocs", h.List)
	}
}

func TestIOCsListDeduplicates(t *testing.T) {
	h := NewIOCsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/iocs", registerIOCRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []ioc.Record
	decodeData(t, rec, &records)
	// lockbit3: .lockbit, .lb3, filename; akira: .akira, filename.
	assert.Len(t, records, 5)
}

func TestIOCsGroupFilter(t *testing.T) {
	h := NewIOCsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/iocs?group=lockbit3", registerIOCRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []ioc.Record
	decodeData(t, rec, &records)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, "lockbit3", r.SourceGroup)
	}
}

func TestIOCsTypeFilter(t *testing.T) {
	h := NewIOCsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/iocs?type=filename", registerIOCRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []ioc.Record
	decodeData(t, rec, &records)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, ioc.TypeFilename, r.Type)
	}
}

func TestIOCsRejectsUnknownType(t *testing.T) {
	h := NewIOCsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/iocs?type=registry_key", registerIOCRoutes(h))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
