package structurer

import (
	"log/slog"
	"regexp"
	"strconv"
)

// Snapshot filenames look like "name_123.md": the entity name, an underscore,
// the wiki revision id, and an extension.
var revisionPattern = regexp.MustCompile(`^(.+)_(\d+)\.[^.]+$`)

// SelectLatest maps each entity name to the snapshot filename carrying its
// highest revision. Non-conforming filenames are skipped with a warning on
// log (nil disables the diagnostic). Revisions are assumed unique per name;
// on a tie the later arrival wins.
func SelectLatest(filenames []string, log *slog.Logger) map[string]string {
	latest := make(map[string]string)
	best := make(map[string]int64)
	for _, fn := range filenames {
		m := revisionPattern.FindStringSubmatch(fn)
		if m == nil {
			if log != nil {
				log.Warn("skipping snapshot with unexpected filename", "filename", fn)
			}
			continue
		}
		rev, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			if log != nil {
				log.Warn("skipping snapshot with unparseable revision", "filename", fn, "error", err)
			}
			continue
		}
		if cur, seen := best[m[1]]; !seen || rev >= cur {
			best[m[1]] = rev
			latest[m[1]] = fn
		}
	}
	return latest
}
