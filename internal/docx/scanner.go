package docx

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

var (
	tagPattern     = regexp.MustCompile(`\{\{(.*?)\}\}`)
	markupPattern  = regexp.MustCompile(`<[^>]+>`)
	runTextPattern = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
)

// systemTags are placeholder names the generator fills automatically. They
// never count as user-supplied fields.
var systemTags = map[string]struct{}{
	"CERTIFICATE_ID": {},
	"QR_CODE":        {},
	"QR":             {},
	"IMAGE QR":       {},
	"IMAGE_QR":       {},
	"QRCODE":         {},
}

// IsReservedTag reports whether a canonical tag is system-filled. Any tag
// carrying the IMAGE command prefix is reserved as well.
func IsReservedTag(canonical string) bool {
	if _, ok := systemTags[canonical]; ok {
		return true
	}
	return strings.Contains(canonical, "IMAGE ")
}

// ScanResult lists the user-facing placeholders of a template.
// Placeholders is the deduplicated canonical set, sorted. Occurrences keeps
// every canonical hit in document order, duplicates included.
type ScanResult struct {
	Placeholders []string
	Occurrences  []string
}

// Scan extracts placeholder tags from DOCX bytes. Tags are matched on the
// markup-stripped text of every XML part, so tags fragmented across
// formatting runs are still found. A secondary pass over the raw run text
// catches tags the markup strip mangled; its hits only extend the
// deduplicated set, never the occurrence list.
func Scan(data []byte) (*ScanResult, error) {
	a, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}

	res := &ScanResult{}
	seen := make(map[string]struct{})

	collect := func(text string, countOccurrences bool) {
		for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
			canonical := strings.ToUpper(strings.TrimSpace(m[1]))
			if canonical == "" || IsReservedTag(canonical) {
				continue
			}
			if countOccurrences {
				res.Occurrences = append(res.Occurrences, canonical)
			}
			if _, ok := seen[canonical]; !ok {
				seen[canonical] = struct{}{}
				res.Placeholders = append(res.Placeholders, canonical)
			}
		}
	}

	for _, p := range a.XMLParts() {
		if p.Err != nil {
			logger.WithFields(map[string]interface{}{"part": p.Name}).
				WithError(p.Err).Warn("skipping unreadable part during scan")
			continue
		}
		collect(markupPattern.ReplaceAllString(string(p.Data), ""), true)
	}

	// Fallback pass: join the literal run texts and rescan.
	for _, p := range a.XMLParts() {
		if p.Err != nil {
			continue
		}
		var b strings.Builder
		for _, m := range runTextPattern.FindAllStringSubmatch(string(p.Data), -1) {
			b.WriteString(m[1])
		}
		collect(b.String(), false)
	}

	sort.Strings(res.Placeholders)
	return res, nil
}
