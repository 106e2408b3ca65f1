package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapTags_PreservesRawSpellings(t *testing.T) {
	data := buildDocx(t, para("{{Name}} {{ course }} {{Name}} {{CERTIFICATE_ID}}"))

	pairs, err := MapTags(data)
	require.NoError(t, err)

	require.Len(t, pairs, 3)
	assert.Equal(t, TagPair{Raw: "Name", Canonical: "NAME"}, pairs[0])
	assert.Equal(t, TagPair{Raw: "course", Canonical: "COURSE"}, pairs[1])
	assert.Equal(t, TagPair{Raw: "CERTIFICATE_ID", Canonical: "CERTIFICATE_ID"}, pairs[2])
}

func TestBind_UppercasesUserStrings(t *testing.T) {
	bound := Bind(map[string]interface{}{" name ": "Jane Doe", "score": 95}, "uid-1", nil, nil)

	assert.Equal(t, "JANE DOE", bound["NAME"])
	assert.Equal(t, 95, bound["SCORE"])
}

func TestBind_IdentifierAliases(t *testing.T) {
	mapping := []TagPair{{Raw: "id", Canonical: "ID"}, {Raw: "Doc_Id", Canonical: "DOC_ID"}}
	bound := Bind(nil, "uid-42", nil, mapping)

	assert.Equal(t, "uid-42", bound["CERTIFICATE_ID"])
	assert.Equal(t, "uid-42", bound["ID"])
	assert.Equal(t, "uid-42", bound["id"])
	assert.Equal(t, "uid-42", bound["Doc_Id"])
}

func TestBind_QRSpellings(t *testing.T) {
	qr := &ImageRef{Width: 4, Height: 4, Data: []byte{1}, Extension: ".png"}
	mapping := []TagPair{{Raw: "qr", Canonical: "QR"}}
	bound := Bind(nil, "uid-1", qr, mapping)

	assert.Same(t, qr, bound["QR"])
	assert.Same(t, qr, bound["IMAGE QR"])
	assert.Same(t, qr, bound["qr"])
}

func TestBind_ImageWrapperBorrowsUserValue(t *testing.T) {
	photo := &ImageRef{Width: 2, Height: 2, Data: []byte{1}, Extension: ".png"}
	mapping := []TagPair{{Raw: "IMAGE Photo", Canonical: "IMAGE PHOTO"}}
	bound := Bind(map[string]interface{}{"PHOTO": photo}, "uid-1", nil, mapping)

	assert.Same(t, photo, bound["IMAGE Photo"])
}

func TestBind_RawSpellingFollowsCanonicalValue(t *testing.T) {
	mapping := []TagPair{{Raw: "Name", Canonical: "NAME"}}
	bound := Bind(map[string]interface{}{"name": "jane"}, "uid-1", nil, mapping)

	assert.Equal(t, "JANE", bound["Name"])
}
