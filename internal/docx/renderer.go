package docx

import (
	"fmt"
	"path"
	"strings"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

// RenderError is a template-authoring problem: unbalanced delimiters or an
// IMAGE tag bound to a non-image value. Callers surface it to the client
// instead of treating it as a server fault.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "template formatting issue: " + e.Reason
}

// Engine fills a healed template with bound data. {{NAME}} substitutes text;
// tags carrying the IMAGE command prefix embed the bound image at the tag
// position.
type Engine struct {
	Start string
	End   string
}

// NewEngine returns an engine using the {{ }} delimiters.
func NewEngine() *Engine {
	return &Engine{Start: "{{", End: "}}"}
}

type renderTag struct {
	literal string // the tag exactly as written, braces and spacing included
	key     string // trimmed inner text
}

// Render substitutes every bound tag in every XML part and returns the
// filled DOCX. Tags with no bound value are left in place. Image values are
// written into the container as media parts with matching relationships.
func (e *Engine) Render(template []byte, data map[string]interface{}) ([]byte, error) {
	a, err := OpenArchive(template)
	if err != nil {
		return nil, err
	}

	imageCount := 0
	imageRels := make(map[string]string) // partName + "\x00" + media name -> relID

	for _, p := range a.XMLParts() {
		if p.Err != nil {
			continue
		}
		content := string(p.Data)
		if !strings.Contains(content, e.Start[:1]) {
			continue
		}

		clean := markupPattern.ReplaceAllString(content, "")
		if opens, closes := strings.Count(clean, e.Start), strings.Count(clean, e.End); opens != closes {
			return nil, &RenderError{Reason: fmt.Sprintf("unbalanced placeholder delimiters in %s", p.Name)}
		}

		tags := collectTags(clean, e.Start, e.End)
		for _, tag := range tags {
			value, ok := lookupValue(data, tag.key)
			if !ok {
				logger.WithFields(map[string]interface{}{"part": p.Name, "tag": tag.key}).
					Debug("tag has no bound value, leaving as-is")
				continue
			}

			canonical := strings.ToUpper(tag.key)
			if img, isImage := value.(*ImageRef); isImage {
				imageCount++
				relID, err := ensureImage(a, p.Name, img, imageCount, imageRels)
				if err != nil {
					return nil, err
				}
				content = replaceTagXML(content, tag.literal, imageRunXML(img, imageCount, relID))
				continue
			}
			if strings.HasPrefix(canonical, "IMAGE ") {
				return nil, &RenderError{Reason: fmt.Sprintf("tag %q expects an image value", tag.key)}
			}
			content = replaceTagXML(content, tag.literal, xmlEscape(fmt.Sprint(value)))
		}

		a.Set(p.Name, []byte(content))
	}

	return a.Bytes()
}

// collectTags lists distinct literal tags in the markup-stripped text, in
// document order.
func collectTags(clean, start, end string) []renderTag {
	seen := make(map[string]struct{})
	var tags []renderTag
	for _, m := range tagPattern.FindAllStringSubmatch(clean, -1) {
		literal := m[0]
		if _, ok := seen[literal]; ok {
			continue
		}
		seen[literal] = struct{}{}
		key := strings.TrimSpace(m[1])
		if key == "" || strings.Contains(key, start) || strings.Contains(key, end) {
			continue
		}
		tags = append(tags, renderTag{literal: literal, key: key})
	}
	return tags
}

// lookupValue resolves a tag key against the bound data, falling back to the
// canonical uppercase form.
func lookupValue(data map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := data[key]; ok {
		return v, true
	}
	v, ok := data[strings.ToUpper(key)]
	return v, ok
}

// replaceTagXML substitutes every occurrence of tag with repl, tolerating
// complete markup elements between the tag's characters. Interspersed markup
// is consumed with the tag, which collapses split formatting runs into the
// run the tag started in.
func replaceTagXML(content, tag, repl string) string {
	if strings.Contains(content, tag) {
		return strings.ReplaceAll(content, tag, repl)
	}

	runes := []rune(content)
	tagRunes := []rune(tag)
	var out strings.Builder
	out.Grow(len(content))

	i := 0
	for i < len(runes) {
		if runes[i] != tagRunes[0] {
			out.WriteRune(runes[i])
			i++
			continue
		}
		end, ok := matchFragmented(runes, i, tagRunes)
		if !ok {
			out.WriteRune(runes[i])
			i++
			continue
		}
		out.WriteString(repl)
		i = end
	}
	return out.String()
}

// matchFragmented matches tag at pos, skipping whole markup elements between
// tag characters. Returns the index just past the match.
func matchFragmented(runes []rune, pos int, tag []rune) (int, bool) {
	i, ti := pos, 0
	for i < len(runes) && ti < len(tag) {
		if runes[i] == '<' && ti > 0 {
			for i < len(runes) && runes[i] != '>' {
				i++
			}
			if i >= len(runes) {
				return 0, false
			}
			i++
			continue
		}
		if runes[i] != tag[ti] {
			return 0, false
		}
		i++
		ti++
	}
	if ti < len(tag) {
		return 0, false
	}
	return i, true
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// cmToEMU converts centimetres to English Metric Units.
func cmToEMU(cm float64) int64 {
	return int64(cm * 360000)
}

// imageRunXML builds a run holding an inline drawing, bracketed so it splices
// into the text run the tag occupied.
func imageRunXML(img *ImageRef, n int, relID string) string {
	cx, cy := cmToEMU(img.Width), cmToEMU(img.Height)
	drawing := fmt.Sprintf(`<w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:effectExtent l="0" t="0" r="0" b="0"/>`+
		`<wp:docPr id="%[3]d" name="image%[3]d"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%[3]d" name="image%[3]d"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[4]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/>`+
		`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, n, relID)
	return `</w:t></w:r>` + drawing + `<w:r><w:t xml:space="preserve">`
}

const emptyRelsPart = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// ensureImage stores the image as a media part, registers a relationship for
// the given XML part and declares the content type. Returns the relationship
// ID to embed.
func ensureImage(a *Archive, partName string, img *ImageRef, n int, imageRels map[string]string) (string, error) {
	ext := img.Extension
	if ext == "" {
		ext = ".png"
	}
	partDir := path.Dir(partName)
	mediaName := fmt.Sprintf("media/image_gen_%d%s", n, ext)

	cacheKey := partName + "\x00" + mediaName
	if relID, ok := imageRels[cacheKey]; ok {
		return relID, nil
	}

	a.Set(path.Join(partDir, mediaName), img.Data)

	relsName := path.Join(partDir, "_rels", path.Base(partName)+".rels")
	relsPart := a.Part(relsName)
	relsContent := emptyRelsPart
	if relsPart != nil && relsPart.Err == nil {
		relsContent = string(relsPart.Data)
	}
	relID := fmt.Sprintf("rIdGen%d", n)
	rel := fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`,
		relID, mediaName)
	if !strings.Contains(relsContent, "</Relationships>") {
		return "", fmt.Errorf("malformed relationships part %s", relsName)
	}
	a.Set(relsName, []byte(strings.Replace(relsContent, "</Relationships>", rel+"</Relationships>", 1)))

	ctPart := a.Part("[Content_Types].xml")
	if ctPart != nil && ctPart.Err == nil {
		ct := string(ctPart.Data)
		extName := strings.TrimPrefix(ext, ".")
		if !strings.Contains(ct, `Extension="`+extName+`"`) {
			def := fmt.Sprintf(`<Default Extension="%s" ContentType="image/%s"/>`, extName, extName)
			a.Set("[Content_Types].xml", []byte(strings.Replace(ct, "</Types>", def+"</Types>", 1)))
		}
	}

	imageRels[cacheKey] = relID
	return relID, nil
}
