package lyrics

import (
	"regexp"
	"strconv"
	"strings"

	"arioso/pkg/models"
)

// lrcLine matches one LRC timestamp tag: two-digit minutes and seconds with
// a two- or three-digit fractional part, e.g. [03:21.45] or [03:21.450].
var lrcLine = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2,3})\](.*)$`)

// Parse turns raw lyrics text into a Lyrics value. Plain lines are always
// the raw input lines. If at least one line carries a valid LRC tag, the
// result also carries synced lines built from the tagged lines only; lines
// with no (or a malformed) tag are dropped from the synced sequence without
// disqualifying the text as synced.
func Parse(raw string) models.Lyrics {
	lines := strings.Split(raw, "\n")

	var synced []models.SyncedLine
	for _, line := range lines {
		m := lrcLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		fraction, _ := strconv.Atoi(m[3])
		// A two-digit fraction is centiseconds, three digits are already
		// milliseconds.
		if len(m[3]) == 2 {
			fraction *= 10
		}
		synced = append(synced, models.SyncedLine{
			TimeMs: minutes*60000 + seconds*1000 + fraction,
			Text:   strings.TrimSpace(m[4]),
		})
	}

	return models.Lyrics{
		Plain:  lines,
		Synced: synced,
	}
}
