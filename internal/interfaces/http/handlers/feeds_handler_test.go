package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

func registerFeedRoutes(h *FeedsHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/v1/ransom-notes", h.Notes)
		r.GET("/api/v1/decryptors", h.Decryptors)
	}
}

func TestNotesFeed(t *testing.T) {
	h := NewFeedsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/ransom-notes", registerFeedRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []threat.RansomNote
	decodeData(t, rec, &notes)
	assert.Len(t, notes, 3)
}

func TestNotesFeedGroupFilter(t *testing.T) {
	h := NewFeedsHandler(&fakeData{notes: fixtureNotes()})

	rec := perform(t, http.MethodGet, "/api/v1/ransom-notes?group=AKIRA", registerFeedRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []threat.RansomNote
	decodeData(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "akira", notes[0].GroupName)
}

func TestDecryptorsFeed(t *testing.T) {
	h := NewFeedsHandler(&fakeData{decryptors: []threat.Decryptor{
		{GroupName: "hive", Name: "hive-decryptor", Vendor: "LE"},
		{GroupName: "conti", Name: "conti-unlocker"},
	}})

	rec := perform(t, http.MethodGet, "/api/v1/decryptors?group=hive", registerFeedRoutes(h))
	require.Equal(t, http.StatusOK, rec.Code)

	var decryptors []threat.Decryptor
	decodeData(t, rec, &decryptors)
	require.Len(t, decryptors, 1)
	assert.Equal(t, "hive-decryptor", decryptors[0].Name)
}
