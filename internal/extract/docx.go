package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart = "word/document.xml"
)

// DOCX extracts the text of each top-level body paragraph followed by a newline.
// Runs are concatenated; a run's w:tab renders as a tab and w:br / w:cr as a newline.
// Paragraphs nested in tables or text boxes are not included.
type DOCX struct{}

// Extract implements Extractor.
func (DOCX) Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", ErrParse, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: docx: missing %s", ErrParse, documentPart)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", ErrParse, err)
	}
	defer rc.Close()

	text, err := paragraphs(rc)
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", ErrParse, err)
	}
	return text, nil
}

func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out   strings.Builder
		para  *strings.Builder
		stack []xml.Name
		pIdx  = -1 // stack index of the open body paragraph
	)
	is := func(i int, local string) bool {
		return i >= 0 && i < len(stack) && stack[i].Space == wordNS && stack[i].Local == local
	}
	// ownRun reports whether the run at stack index i belongs to the open
	// paragraph directly or through a hyperlink, insertion or smart tag.
	ownRun := func(i int) bool {
		if !is(i, "r") || pIdx < 0 {
			return false
		}
		if i-1 == pIdx {
			return true
		}
		return i-2 == pIdx && (is(i-1, "hyperlink") || is(i-1, "ins") || is(i-1, "smartTag"))
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			top := len(stack) - 1
			if t.Name.Space == wordNS {
				switch {
				case t.Name.Local == "p" && is(top, "body"):
					para = &strings.Builder{}
					pIdx = len(stack)
				case t.Name.Local == "tab" && ownRun(top):
					para.WriteByte('\t')
				case (t.Name.Local == "br" || t.Name.Local == "cr") && ownRun(top):
					para.WriteByte('\n')
				}
			}
			stack = append(stack, t.Name)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == pIdx {
				out.WriteString(para.String())
				out.WriteByte('\n')
				para, pIdx = nil, -1
			}
		case xml.CharData:
			top := len(stack) - 1
			if is(top, "t") && ownRun(top-1) {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}
