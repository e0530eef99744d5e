package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/pkg/types/common"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeData is an in-memory DataSource for handler tests.
type fakeData struct {
	victims    []threat.Victim
	groups     []threat.GroupProfile
	notes      []threat.RansomNote
	decryptors []threat.Decryptor
	chats      []threat.NegotiationChat
	err        error
}

func (f *fakeData) Victims(context.Context) ([]threat.Victim, error) { return f.victims, f.err }
func (f *fakeData) Groups(context.Context) ([]threat.GroupProfile, error) {
	return f.groups, f.err
}
func (f *fakeData) Notes(context.Context) ([]threat.RansomNote, error) { return f.notes, f.err }
func (f *fakeData) Decryptors(context.Context) ([]threat.Decryptor, error) {
	return f.decryptors, f.err
}
func (f *fakeData) Chats(context.Context) ([]threat.NegotiationChat, error) {
	return f.chats, f.err
}

func ts(s string) common.Timestamp {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return common.Timestamp(t.UTC())
}

func fixtureVictims() []threat.Victim {
	return []threat.Victim{
		{PostTitle: "Acme Corp", GroupName: "lockbit3", Country: "USA", Activity: "Manufacturing", DiscoveredAt: ts("2025-06-03")},
		{PostTitle: "Globex", GroupName: "akira", Country: "Germany", Activity: "Finance", DiscoveredAt: ts("2025-06-02")},
		{PostTitle: "Initech", GroupName: "lockbit3", Country: "US", Activity: "Technology", DiscoveredAt: ts("2025-06-01")},
		{PostTitle: "Umbrella", GroupName: "play", Country: "Unknown", Activity: "Healthcare", DiscoveredAt: ts("2025-05-30")},
	}
}

// perform runs one request through a fresh engine holding the given
// route.
func perform(t *testing.T, method, path string, register func(*gin.Engine)) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	register(r)
	rec := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	r.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" field of a success envelope.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// errorCode extracts the code field of an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}
