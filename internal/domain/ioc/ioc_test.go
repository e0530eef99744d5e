package ioc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

func lockbitNotes() []threat.RansomNote {
	return []threat.RansomNote{
		{GroupName: "lockbit3", Filename: "README.txt", Extensions: []string{".lockbit", ".lock"}},
		{GroupName: "lockbit3", Filename: "README.txt", Extensions: []string{".lockbit"}},
	}
}

func TestExtract_DeduplicatesAcrossNotes(t *testing.T) {
	records := Extract(lockbitNotes())
	require.Len(t, records, 3)
	assert.Equal(t, Record{
		Type: TypeFileExtension, Value: ".lockbit", SourceGroup: "lockbit3",
		Description: "Encrypted file extension used by lockbit3",
	}, records[0])
	assert.Equal(t, Record{
		Type: TypeFileExtension, Value: ".lock", SourceGroup: "lockbit3",
		Description: "Encrypted file extension used by lockbit3",
	}, records[1])
	assert.Equal(t, Record{
		Type: TypeFilename, Value: "README.txt", SourceGroup: "lockbit3",
		Description: "Ransom note filename for lockbit3",
	}, records[2])
}

func TestExtract_SameValueDifferentGroupsNotDuplicates(t *testing.T) {
	notes := []threat.RansomNote{
		{GroupName: "lockbit3", Filename: "README.txt"},
		{GroupName: "play", Filename: "README.txt"},
	}
	records := Extract(notes)
	require.Len(t, records, 2)
	assert.Equal(t, "lockbit3", records[0].SourceGroup)
	assert.Equal(t, "play", records[1].SourceGroup)
}

func TestExtract_Idempotent(t *testing.T) {
	notes := lockbitNotes()
	doubled := append(append([]threat.RansomNote{}, notes...), notes...)
	assert.Equal(t, Extract(notes), Extract(doubled))
}

func TestExtract_EmptyValuesSkipped(t *testing.T) {
	notes := []threat.RansomNote{
		{GroupName: "akira", Filename: "", Extensions: []string{"", ".akira"}},
	}
	records := Extract(notes)
	require.Len(t, records, 1)
	assert.Equal(t, ".akira", records[0].Value)
}

func TestExtract_EmptyInput(t *testing.T) {
	assert.Empty(t, Extract(nil))
	assert.Empty(t, Extract([]threat.RansomNote{}))
}

func TestExtract_FirstSeenDescriptionWins(t *testing.T) {
	// The description embeds the group name, so a collision can only repeat
	// the same text; this pins the first-seen rule itself via ordering.
	notes := []threat.RansomNote{
		{GroupName: "babuk", Extensions: []string{".babyk"}},
		{GroupName: "babuk", Filename: "How To Restore Your Files.txt", Extensions: []string{".babyk"}},
	}
	records := Extract(notes)
	require.Len(t, records, 2)
	assert.Equal(t, TypeFileExtension, records[0].Type)
	assert.Equal(t, TypeFilename, records[1].Type)
}

func sampleSet() []Record {
	return []Record{
		{Type: TypeFileExtension, Value: ".lockbit", SourceGroup: "lockbit3"},
		{Type: TypeFilename, Value: "README.txt", SourceGroup: "lockbit3"},
		{Type: TypeFileExtension, Value: ".play", SourceGroup: "play"},
		{Type: TypeFilename, Value: "ReadMe.txt", SourceGroup: "play"},
	}
}

func TestFilter_TextQueryMatchesValueOrGroup(t *testing.T) {
	got := Filter(sampleSet(), "LOCK", "", "")
	require.Len(t, got, 2)
	assert.Equal(t, ".lockbit", got[0].Value)
	assert.Equal(t, "README.txt", got[1].Value)

	// "readme" matches values case-insensitively across groups.
	got = Filter(sampleSet(), "readme", "", "")
	assert.Len(t, got, 2)
}

func TestFilter_TypeExact(t *testing.T) {
	got := Filter(sampleSet(), "", TypeFilename, "")
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, TypeFilename, r.Type)
	}
}

func TestFilter_GroupCaseInsensitiveEquality(t *testing.T) {
	got := Filter(sampleSet(), "", "", "PLAY")
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "play", r.SourceGroup)
	}
}

func TestFilter_PredicatesAND(t *testing.T) {
	got := Filter(sampleSet(), "readme", TypeFilename, "lockbit3")
	require.Len(t, got, 1)
	assert.Equal(t, "README.txt", got[0].Value)
}

func TestFilter_NoFiltersReturnsAll(t *testing.T) {
	assert.Len(t, Filter(sampleSet(), "", "", ""), 4)
}

func TestType_IsValid(t *testing.T) {
	for _, typ := range []Type{TypeFileExtension, TypeFilename, TypeDomain, TypeURL, TypeHash, TypeEmail} {
		assert.True(t, typ.IsValid())
	}
	assert.False(t, Type("registry_key").IsValid())
	assert.False(t, Type("").IsValid())
}
