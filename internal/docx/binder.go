package docx

import (
	"strings"
)

// ImageRef describes an image to embed at a tag position. Width and Height
// are in centimetres.
type ImageRef struct {
	Width     float64
	Height    float64
	Data      []byte
	Extension string
}

// idAliases are the spellings that all resolve to the document's unique ID.
var idAliases = map[string]struct{}{
	"CERTIFICATE_ID": {},
	"CERTIFICATE ID": {},
	"CERTIFICATEID":  {},
	"ID":             {},
	"UNIQUE_ID":      {},
	"DOC_ID":         {},
}

// IsIdentifierAlias reports whether a canonical tag resolves to the unique ID.
func IsIdentifierAlias(canonical string) bool {
	_, ok := idAliases[canonical]
	return ok
}

type bindingClass int

const (
	classIdentifier bindingClass = iota
	classQR
	classImageWrapper
	classUserData
)

// classifyTag maps a canonical tag onto its binding rule. New alias families
// become rows here, not new code paths.
func classifyTag(canonical string) bindingClass {
	switch {
	case IsIdentifierAlias(canonical):
		return classIdentifier
	case canonical == "QR" || canonical == "QRCODE" || canonical == "QR_CODE" ||
		canonical == "IMAGE_QR" || canonical == "IMAGE QR":
		return classQR
	case strings.HasPrefix(canonical, "IMAGE "):
		return classImageWrapper
	default:
		return classUserData
	}
}

// Bind builds the flat map handed to the render engine. User keys are
// canonicalized and string values uppercased; identifier aliases resolve to
// uniqueID and QR spellings to the qr image. The tag mapping then gets every
// raw spelling present in the template its own entry, so a template written
// as {{Name}} still finds its value. Binding never fails: tags without data
// are simply left for the renderer to skip.
func Bind(userData map[string]interface{}, uniqueID string, qr *ImageRef, mapping []TagPair) map[string]interface{} {
	bound := make(map[string]interface{}, len(userData)+len(mapping)+6)

	for k, v := range userData {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if s, ok := v.(string); ok {
			bound[key] = strings.ToUpper(s)
		} else {
			bound[key] = v
		}
	}

	for alias := range idAliases {
		bound[alias] = uniqueID
	}
	if qr != nil {
		bound["QR"] = qr
		bound["QRCODE"] = qr
		bound["QR_CODE"] = qr
		bound["IMAGE_QR"] = qr
		bound["IMAGE QR"] = qr
	}

	for _, pair := range mapping {
		if _, exists := bound[pair.Raw]; exists {
			continue
		}
		switch classifyTag(pair.Canonical) {
		case classIdentifier:
			bound[pair.Raw] = uniqueID
		case classQR:
			if qr != nil {
				bound[pair.Raw] = qr
			}
		case classImageWrapper:
			if v, ok := bound[strings.TrimPrefix(pair.Canonical, "IMAGE ")]; ok {
				bound[pair.Raw] = v
			}
		case classUserData:
			if v, ok := bound[pair.Canonical]; ok {
				bound[pair.Raw] = v
			}
		}
	}

	return bound
}
