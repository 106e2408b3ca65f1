package docx

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// healedTag is the canonical form every QR spelling is rewritten to before
// rendering.
const healedTag = "{{IMAGE QR}}"

// healTargets lists the QR tag spellings word processors are known to
// fragment. Longest literal first so "qrcode" is consumed before "qr" can
// match its prefix.
var healTargets = []*regexp.Regexp{
	fragmentedTagPattern("qrcode"),
	fragmentedTagPattern("qr"),
}

// fragmentedTagPattern builds a case-insensitive matcher for {{target}} that
// tolerates markup fragments between every character, including between the
// brace delimiters themselves.
func fragmentedTagPattern(target string) *regexp.Regexp {
	const filler = `(?:<[^>]+>)*`
	var b strings.Builder
	b.WriteString(`\{` + filler + `\{` + filler + `\s*` + filler)
	for _, r := range target {
		fmt.Fprintf(&b, `[%c%c]%s`, unicode.ToLower(r), unicode.ToUpper(r), filler)
	}
	b.WriteString(`\s*` + filler + `\}` + filler + `\}`)
	return regexp.MustCompile(b.String())
}

// Heal rewrites fragmented or alternate QR tag spellings to the canonical
// {{IMAGE QR}} in every XML part. The rewrite is idempotent: the canonical
// form does not match any heal pattern, so healing an already-healed
// document returns it unchanged. The returned bool reports whether any
// rewrite happened.
func Heal(data []byte) ([]byte, bool, error) {
	a, err := OpenArchive(data)
	if err != nil {
		return nil, false, err
	}

	changed := false
	for _, p := range a.XMLParts() {
		if p.Err != nil {
			continue
		}
		content := string(p.Data)
		rewritten := content
		for _, re := range healTargets {
			rewritten = re.ReplaceAllString(rewritten, healedTag)
		}
		if rewritten != content {
			a.Set(p.Name, []byte(rewritten))
			changed = true
		}
	}

	if !changed {
		return data, false, nil
	}
	out, err := a.Bytes()
	return out, true, err
}
