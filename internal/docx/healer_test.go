package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeal_RewritesFragmentedQRTag(t *testing.T) {
	body := `<w:p>` +
		`<w:r><w:t>{{q</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>r}}</w:t></w:r>` +
		`</w:p>`
	data := buildDocx(t, body)

	healed, changed, err := Heal(data)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, readPart(t, healed, "word/document.xml"), "{{IMAGE QR}}")
}

func TestHeal_RewritesQRCodeSpelling(t *testing.T) {
	data := buildDocx(t, para("scan here: {{QRCODE}}"))

	healed, changed, err := Heal(data)
	require.NoError(t, err)
	assert.True(t, changed)

	doc := readPart(t, healed, "word/document.xml")
	assert.Contains(t, doc, "{{IMAGE QR}}")
	assert.NotContains(t, doc, "{{QRCODE}}")
}

func TestHeal_IsIdempotent(t *testing.T) {
	data := buildDocx(t, para("{{qr}}"))

	healed, changed, err := Heal(data)
	require.NoError(t, err)
	require.True(t, changed)

	again, changed, err := Heal(healed)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, healed, again)
}

func TestHeal_LeavesOtherTagsAlone(t *testing.T) {
	data := buildDocx(t, para("{{NAME}} {{COURSE}}"))

	_, changed, err := Heal(data)
	require.NoError(t, err)
	assert.False(t, changed)
}
