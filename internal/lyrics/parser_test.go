package lyrics

import (
	"testing"

	"arioso/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestParseSyncedLines(t *testing.T) {
	raw := "[00:01.50]First\n[00:03.00]Second"
	parsed := Parse(raw)

	assert.Equal(t, []models.SyncedLine{
		{TimeMs: 1500, Text: "First"},
		{TimeMs: 3000, Text: "Second"},
	}, parsed.Synced)
	assert.Equal(t, []string{"[00:01.50]First", "[00:03.00]Second"}, parsed.Plain)
	assert.False(t, parsed.FromRemote)
}

func TestParseTimestampGrammar(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		timeMs int
		text   string
	}{
		{"two digit fraction is centiseconds", "[00:01.50]hello", 1500, "hello"},
		{"three digit fraction is milliseconds", "[00:01.500]hello", 1500, "hello"},
		{"minutes contribute 60000ms each", "[02:30.00]mid", 150000, "mid"},
		{"text is trimmed", "[00:05.25]  spaced  ", 5250, "spaced"},
		{"empty text allowed", "[00:09.99]", 9990, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.line)
			if assert.Len(t, parsed.Synced, 1) {
				assert.Equal(t, tt.timeMs, parsed.Synced[0].TimeMs)
				assert.Equal(t, tt.text, parsed.Synced[0].Text)
			}
		})
	}
}

func TestParseMalformedLinesDroppedFromSynced(t *testing.T) {
	raw := "[00:01.50]good\n[00:02.00 missing bracket\nuntagged line\n[00:04.00]also good"
	parsed := Parse(raw)

	// One bad tag does not disqualify the text; bad lines just vanish from
	// the synced sequence while plain keeps everything.
	assert.Len(t, parsed.Synced, 2)
	assert.Equal(t, 1500, parsed.Synced[0].TimeMs)
	assert.Equal(t, 4000, parsed.Synced[1].TimeMs)
	assert.Len(t, parsed.Plain, 4)
}

func TestParsePlainOnly(t *testing.T) {
	raw := "just some words\nanother line"
	parsed := Parse(raw)

	assert.Empty(t, parsed.Synced)
	assert.Equal(t, []string{"just some words", "another line"}, parsed.Plain)
}

func TestParseRejectsLooseTimestamps(t *testing.T) {
	tests := []string{
		"[0:01.50]single digit minutes",
		"[00:1.50]single digit seconds",
		"[00:01.5]single digit fraction",
		"[00:01.5000]four digit fraction",
		" [00:01.50]leading space",
	}
	for _, line := range tests {
		parsed := Parse(line)
		assert.Empty(t, parsed.Synced, "line %q should not parse as synced", line)
	}
}
