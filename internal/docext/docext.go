// Package docext extracts plain text from uploaded documents,
// dispatching on the file extension. Supported formats: pdf, doc/docx,
// md, txt, xls/xlsx, ppt/pptx.
package docext

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"sumbot/internal/apperr"
)

// Legacy doc/xls/ppt extensions are accepted but routed to the OOXML
// parsers; pre-2007 binary files fail with EXTRACTION_FAILED.
var extToFormat = map[string]string{
	"pdf":  "pdf",
	"doc":  "docx",
	"docx": "docx",
	"md":   "md",
	"txt":  "txt",
	"xls":  "excel",
	"xlsx": "excel",
	"ppt":  "ppt",
	"pptx": "ppt",
}

// Extract converts an uploaded file's bytes into plain text.
func Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	format, ok := extToFormat[ext]
	if !ok {
		return "", apperr.New(apperr.KindUnsupportedFormat, "不支持的文件类型: %s", ext)
	}

	switch format {
	case "pdf":
		return readPDF(data)
	case "docx":
		return readWord(data)
	case "excel":
		return readExcel(data)
	case "ppt":
		return readSlides(data)
	default: // md, txt
		return string(data), nil
	}
}

// readPDF concatenates each page's text in page order.
func readPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperr.New(apperr.KindExtractionFailed, "解析 PDF 失败: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析 PDF 失败")
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperr.Wrap(apperr.KindExtractionFailed, err, "读取 PDF 第 %d 页失败", i)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// readExcel emits a "Sheet: <name>" header per sheet followed by one
// tab-joined line per row, preserving workbook order.
func readExcel(data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析 Excel 失败")
	}
	defer workbook.Close()

	var lines []string
	for _, name := range workbook.GetSheetList() {
		lines = append(lines, "Sheet: "+name)
		rows, err := workbook.GetRows(name)
		if err != nil {
			return "", apperr.Wrap(apperr.KindExtractionFailed, err, "读取工作表 %s 失败", name)
		}
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
	}

	return strings.Join(lines, "\n"), nil
}
