package docext

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"sumbot/internal/apperr"
)

func TestExtract_TxtAndMarkdownVerbatim(t *testing.T) {
	for _, name := range []string{"notes.txt", "notes.md", "NOTES.TXT"} {
		text, err := Extract(name, []byte("# 标记 marker 内容\n"))
		if err != nil {
			t.Fatalf("Extract(%s) failed: %v", name, err)
		}
		if !strings.Contains(text, "marker") {
			t.Fatalf("Extract(%s) = %q, missing marker", name, text)
		}
		// Markdown is passed through verbatim, not rendered.
		if !strings.HasPrefix(text, "# ") {
			t.Fatalf("Extract(%s) = %q, markdown syntax should be preserved", name, text)
		}
	}
}

func TestExtract_UnknownExtension(t *testing.T) {
	_, err := Extract("image.png", []byte{0x89, 0x50})
	if err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindUnsupportedFormat {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindUnsupportedFormat)
	}
}

func TestExtract_PDF(t *testing.T) {
	data := buildPDF(t, "pdf marker content")

	text, err := Extract("sample.pdf", data)
	if err != nil {
		t.Fatalf("Extract(pdf) failed: %v", err)
	}
	if !strings.Contains(text, "pdf marker content") {
		t.Fatalf("Extract(pdf) = %q, missing marker", text)
	}
}

func TestExtract_MalformedPDF(t *testing.T) {
	_, err := Extract("broken.pdf", []byte("not a pdf at all"))
	if err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindExtractionFailed {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindExtractionFailed)
	}
}

func TestExtract_LegacyDocBinary(t *testing.T) {
	// .doc is accepted by the extension table but only the OOXML body
	// parses; a real legacy binary file fails extraction.
	_, err := Extract("old.doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	if err == nil {
		t.Fatalf("expected error for legacy binary doc")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindExtractionFailed {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindExtractionFailed)
	}
}

func TestExtract_Docx(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>第一段 marker</w:t></w:r></w:p>
    <w:p><w:r><w:t>第二</w:t></w:r><w:r><w:t>段</w:t></w:r></w:p>
  </w:body>
</w:document>`

	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	text, err := Extract("report.docx", data)
	if err != nil {
		t.Fatalf("Extract(docx) failed: %v", err)
	}
	if text != "第一段 marker\n第二段" {
		t.Fatalf("Extract(docx) = %q", text)
	}
}

func TestExtract_DocxMalformed(t *testing.T) {
	_, err := Extract("report.docx", []byte("definitely not a zip"))
	if err == nil {
		t.Fatalf("expected error for malformed docx")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindExtractionFailed {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindExtractionFailed)
	}
}

func TestExtract_PptxSlideOrder(t *testing.T) {
	slide := func(text string) string {
		return `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}

	// slide10 would sort before slide2 lexically; numeric order must win.
	data := buildZip(t, map[string]string{
		"ppt/slides/slide10.xml": slide("tenth"),
		"ppt/slides/slide1.xml":  slide("first marker"),
		"ppt/slides/slide2.xml":  slide("second"),
	})

	text, err := Extract("deck.pptx", data)
	if err != nil {
		t.Fatalf("Extract(pptx) failed: %v", err)
	}
	if text != "first marker\nsecond\ntenth" {
		t.Fatalf("Extract(pptx) = %q", text)
	}
}

func TestExtract_Xlsx(t *testing.T) {
	workbook := excelize.NewFile()
	if err := workbook.SetCellValue("Sheet1", "A1", "cell marker"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := workbook.SetCellValue("Sheet1", "B1", 42); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("workbook write failed: %v", err)
	}

	text, err := Extract("table.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Extract(xlsx) failed: %v", err)
	}
	if !strings.Contains(text, "Sheet: Sheet1") {
		t.Fatalf("Extract(xlsx) = %q, missing sheet header", text)
	}
	if !strings.Contains(text, "cell marker\t42") {
		t.Fatalf("Extract(xlsx) = %q, missing tab-joined row", text)
	}
}

// buildPDF assembles a minimal one-page PDF whose content stream shows
// text. Cross-reference offsets are computed while writing, so the file
// is well formed.
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	stream := "BT /F1 12 Tf 72 720 Td (" + text + ") Tj ET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	// Each xref entry must be exactly 20 bytes.
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
