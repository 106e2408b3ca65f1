package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SubstitutesText(t *testing.T) {
	data := buildDocx(t, para("This certifies that {{NAME}} completed {{COURSE}}."))

	out, err := NewEngine().Render(data, map[string]interface{}{
		"NAME":   "JANE DOE",
		"COURSE": "DISTRIBUTED SYSTEMS",
	})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "JANE DOE")
	assert.Contains(t, doc, "DISTRIBUTED SYSTEMS")
	assert.NotContains(t, doc, "{{NAME}}")
}

func TestRender_SubstitutesFragmentedTags(t *testing.T) {
	body := `<w:p>` +
		`<w:r><w:t>{{NA</w:t></w:r>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t>ME}}</w:t></w:r>` +
		`</w:p>`
	data := buildDocx(t, body)

	out, err := NewEngine().Render(data, map[string]interface{}{"NAME": "JANE"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "JANE")
	assert.NotContains(t, doc, "{{NA")
}

func TestRender_ResolvesRawSpelling(t *testing.T) {
	data := buildDocx(t, para("{{Name}}"))

	out, err := NewEngine().Render(data, map[string]interface{}{"NAME": "JANE"})
	require.NoError(t, err)

	assert.Contains(t, readPart(t, out, "word/document.xml"), "JANE")
}

func TestRender_EscapesXML(t *testing.T) {
	data := buildDocx(t, para("{{ORG}}"))

	out, err := NewEngine().Render(data, map[string]interface{}{"ORG": `R&D <"LABS">`})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "R&amp;D &lt;&quot;LABS&quot;&gt;")
}

func TestRender_LeavesUnboundTags(t *testing.T) {
	data := buildDocx(t, para("{{NAME}} {{UNKNOWN}}"))

	out, err := NewEngine().Render(data, map[string]interface{}{"NAME": "JANE"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "{{UNKNOWN}}")
	assert.NotContains(t, doc, "{{NAME}}")
}

func TestRender_UnbalancedDelimiters(t *testing.T) {
	data := buildDocx(t, para("{{NAME} is broken"))

	_, err := NewEngine().Render(data, map[string]interface{}{"NAME": "JANE"})
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, renderErr.Error(), "template formatting issue")
}

func TestRender_EmbedsImage(t *testing.T) {
	data := buildDocx(t, para("scan: {{IMAGE QR}}"))

	img := &ImageRef{Width: 4, Height: 4, Data: []byte{0x89, 'P', 'N', 'G'}, Extension: ".png"}
	out, err := NewEngine().Render(data, map[string]interface{}{"IMAGE QR": img})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "<w:drawing>")
	assert.Contains(t, doc, `r:embed="rIdGen1"`)
	assert.NotContains(t, doc, "{{IMAGE QR}}")

	assert.True(t, hasPart(t, out, "word/media/image_gen_1.png"))
	rels := readPart(t, out, "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Id="rIdGen1"`)
	assert.Contains(t, rels, `Target="media/image_gen_1.png"`)
	assert.Contains(t, readPart(t, out, "[Content_Types].xml"), `Extension="png"`)
}

func TestRender_ImageTagWithTextValue(t *testing.T) {
	data := buildDocx(t, para("{{IMAGE LOGO}}"))

	_, err := NewEngine().Render(data, map[string]interface{}{"IMAGE LOGO": "not an image"})

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}
