package country

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolver_BuiltInTableIsValid(t *testing.T) {
	assert.NotPanics(t, func() { NewResolver() })
}

func TestResolve_ByCode(t *testing.T) {
	r := NewResolver()
	id, ok := r.Resolve("US")
	require.True(t, ok)
	assert.Equal(t, "US", id.Code)
	assert.Equal(t, "United States of America", id.DisplayName)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	r := NewResolver()
	for _, token := range []string{"us", "Us", "uS", "usa", "UNITED STATES", "united states of america"} {
		id, ok := r.Resolve(token)
		require.True(t, ok, "token %q must resolve", token)
		assert.Equal(t, "US", id.Code, "token %q", token)
	}
}

func TestResolve_GeometryNames(t *testing.T) {
	r := NewResolver()
	tests := []struct {
		token string
		code  string
	}{
		{"Bosnia and Herz.", "BA"},
		{"Dominican Rep.", "DO"},
		{"Czechia", "CZ"},
		{"Türkiye", "TR"},
		{"Korea, Republic of", "KR"},
		{"Russian Federation", "RU"},
		{"Viet Nam", "VN"},
		{"Holy See", "VA"},
	}
	for _, tt := range tests {
		id, ok := r.Resolve(tt.token)
		require.True(t, ok, "token %q must resolve", tt.token)
		assert.Equal(t, tt.code, id.Code, "token %q", tt.token)
	}
}

func TestResolve_SentinelAndUnknownTokens(t *testing.T) {
	r := NewResolver()
	for _, token := range []string{"", "Unknown", "unknown", "N/A", "n/a", "Not Found", "Atlantis", "ZZ", "  "} {
		_, ok := r.Resolve(token)
		assert.False(t, ok, "token %q must not resolve", token)
	}
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	r := NewResolver()
	id, ok := r.Resolve("  Germany ")
	require.True(t, ok)
	assert.Equal(t, "DE", id.Code)
}

// Resolution must be a function: every registered display name resolves to
// the same identity as its code.
func TestResolve_DisplayNameEqualsCode(t *testing.T) {
	r := NewResolver()
	for _, code := range r.Codes() {
		byCode, ok := r.Resolve(code)
		require.True(t, ok, "code %s", code)
		byName, ok := r.Resolve(byCode.DisplayName)
		require.True(t, ok, "display name %q", byCode.DisplayName)
		assert.Equal(t, byCode.Code, byName.Code, "display name %q", byCode.DisplayName)
	}
}

func TestAliasesFor(t *testing.T) {
	r := NewResolver()
	aliases := r.AliasesFor("gb")
	assert.ElementsMatch(t, []string{"United Kingdom", "UK", "Great Britain"}, aliases)

	assert.Nil(t, r.AliasesFor("ZZ"))
	assert.Nil(t, r.AliasesFor(""))
}

func TestAliasesFor_ReturnsCopy(t *testing.T) {
	r := NewResolver()
	first := r.AliasesFor("US")
	first[0] = "mutated"
	assert.Equal(t, "United States of America", r.AliasesFor("US")[0])
}

func TestNewResolverWithTable_RejectsDuplicateAlias(t *testing.T) {
	_, err := NewResolverWithTable(map[string][]string{
		"US": {"United States", "America"},
		"CA": {"Canada", "America"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "america")
}

func TestNewResolverWithTable_RejectsEmptyNames(t *testing.T) {
	_, err := NewResolverWithTable(map[string][]string{"US": {}})
	assert.Error(t, err)
}

func TestNewResolverWithTable_SameAliasSameCodeAllowed(t *testing.T) {
	// A name repeated under its own code is harmless.
	r, err := NewResolverWithTable(map[string][]string{
		"US": {"United States", "United States"},
	})
	require.NoError(t, err)
	id, ok := r.Resolve("united states")
	require.True(t, ok)
	assert.Equal(t, "US", id.Code)
}

func TestIsExcludedToken(t *testing.T) {
	assert.True(t, IsExcludedToken(""))
	assert.True(t, IsExcludedToken("Unknown"))
	assert.True(t, IsExcludedToken("N/A"))
	assert.True(t, IsExcludedToken("not found"))
	assert.False(t, IsExcludedToken("US"))
}

func TestCodes_SortedAscending(t *testing.T) {
	r := NewResolver()
	codes := r.Codes()
	require.NotEmpty(t, codes)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
}
