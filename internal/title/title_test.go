package title

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_CleanTitlePassesThrough(t *testing.T) {
	got, warnings := Sanitize("Ranked Highlights Ep. 12")
	assert.Equal(t, "Ranked Highlights Ep. 12", got)
	assert.Empty(t, warnings)
}

func TestSanitize_StripsAngleBrackets(t *testing.T) {
	got, warnings := Sanitize("<clutch> round > all")
	assert.Equal(t, "clutch round  all", got)
	assert.Len(t, warnings, 2)
}

func TestSanitize_TruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("a", MaxLength+20)
	got, warnings := Sanitize(long)
	assert.Len(t, got, MaxLength)
	assert.Len(t, warnings, 1)
}

func TestSanitize_EmptyFallsBack(t *testing.T) {
	got, warnings := Sanitize("<>")
	assert.Equal(t, Fallback, got)
	assert.NotEmpty(t, warnings)
}

func TestFromFilename_DropsExtensionOnly(t *testing.T) {
	got, warnings := FromFilename("match.final.v2.mp4")
	assert.Equal(t, "match.final.v2", got)
	assert.Empty(t, warnings)

	got, _ = FromFilename(".hidden")
	assert.Equal(t, ".hidden", got)
}
