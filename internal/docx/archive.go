package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

// Part is one file inside the DOCX container. Err records a per-part read
// failure; such parts are skipped by scans and dropped on write.
type Part struct {
	Name string
	Data []byte
	Err  error
}

// Archive is a DOCX container held in memory. Part order is preserved on
// write so an untouched template round-trips unchanged.
type Archive struct {
	parts []*Part
	index map[string]*Part
}

// OpenArchive reads DOCX bytes into memory. It fails only when the input is
// not a zip container at all; unreadable individual parts are recorded on the
// part and tolerated.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}

	a := &Archive{index: make(map[string]*Part, len(zr.File))}
	for _, f := range zr.File {
		part := &Part{Name: f.Name}
		rc, err := f.Open()
		if err != nil {
			part.Err = err
		} else {
			part.Data, part.Err = io.ReadAll(rc)
			rc.Close()
		}
		a.parts = append(a.parts, part)
		a.index[f.Name] = part
	}

	return a, nil
}

// XMLParts returns the readable XML parts in container order.
func (a *Archive) XMLParts() []*Part {
	var out []*Part
	for _, p := range a.parts {
		if !strings.HasSuffix(p.Name, ".xml") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Part returns the named part, or nil when absent.
func (a *Archive) Part(name string) *Part {
	return a.index[name]
}

// Set replaces the named part's content, appending a new part when the name
// is not present yet.
func (a *Archive) Set(name string, data []byte) {
	if p, ok := a.index[name]; ok {
		p.Data = data
		p.Err = nil
		return
	}
	p := &Part{Name: name, Data: data}
	a.parts = append(a.parts, p)
	a.index[name] = p
}

// Bytes re-zips the container. Parts that failed to read are dropped with a
// warning rather than aborting the write.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range a.parts {
		if p.Err != nil {
			logger.WithFields(map[string]interface{}{"part": p.Name}).
				WithError(p.Err).Warn("dropping unreadable docx part")
			continue
		}
		w, err := zw.Create(p.Name)
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.Name, err)
		}
		if _, err := w.Write(p.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx container: %w", err)
	}
	return buf.Bytes(), nil
}
