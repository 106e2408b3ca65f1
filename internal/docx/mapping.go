package docx

import (
	"strings"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

// TagPair couples a tag's as-written spelling with its canonical uppercase
// trimmed form.
type TagPair struct {
	Raw       string
	Canonical string
}

// MapTags lists every distinct raw tag spelling present in the template, in
// document order. System tags are included; the binder decides what each one
// resolves to. Compute this once per template and reuse it across rows.
func MapTags(data []byte) ([]TagPair, error) {
	a, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var pairs []TagPair
	for _, p := range a.XMLParts() {
		if p.Err != nil {
			logger.WithFields(map[string]interface{}{"part": p.Name}).
				WithError(p.Err).Warn("skipping unreadable part during tag mapping")
			continue
		}
		clean := markupPattern.ReplaceAllString(string(p.Data), "")
		for _, m := range tagPattern.FindAllStringSubmatch(clean, -1) {
			raw := strings.TrimSpace(m[1])
			if raw == "" {
				continue
			}
			if _, ok := seen[raw]; ok {
				continue
			}
			seen[raw] = struct{}{}
			pairs = append(pairs, TagPair{Raw: raw, Canonical: strings.ToUpper(raw)})
		}
	}
	return pairs, nil
}
