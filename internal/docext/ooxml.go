package docext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"sumbot/internal/apperr"
)

// wordDocument mirrors the subset of WordprocessingML needed to pull
// paragraph text from word/document.xml. Tables and images are skipped.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Texts []wordText `xml:"t"`
}

type wordText struct {
	Value string `xml:",chardata"`
}

// readWord concatenates each paragraph's text in document order.
func readWord(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析 Word 文档失败")
	}

	content, err := readZipEntry(reader, "word/document.xml")
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "读取 Word 正文失败")
	}

	var doc wordDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析 Word 正文失败")
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range para.Runs {
			for _, t := range run.Texts {
				b.WriteString(t.Value)
			}
		}
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n"), nil
}

// readSlides walks ppt/slides/slideN.xml in slide order and collects the
// text of every <a:t> element. Slides and shapes without text contribute
// nothing.
func readSlides(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析 PPT 失败")
	}

	type slideFile struct {
		index int
		file  *zip.File
	}

	var slides []slideFile
	for _, file := range reader.File {
		name := file.Name
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		index, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{index: index, file: file})
	}

	// Zip entry order is not slide order; slide10.xml sorts before
	// slide2.xml lexically.
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	var lines []string
	for _, slide := range slides {
		rc, err := slide.file.Open()
		if err != nil {
			return "", apperr.Wrap(apperr.KindExtractionFailed, err, "读取幻灯片 %d 失败", slide.index)
		}
		texts, err := slideTexts(rc)
		rc.Close()
		if err != nil {
			return "", apperr.Wrap(apperr.KindExtractionFailed, err, "解析幻灯片 %d 失败", slide.index)
		}
		lines = append(lines, texts...)
	}

	return strings.Join(lines, "\n"), nil
}

// slideTexts scans one slide's XML for <a:t> text elements in order.
func slideTexts(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var texts []string
	var inText bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			inText = tok.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				if text := string(tok); text != "" {
					texts = append(texts, text)
				}
			}
		}
	}
	return texts, nil
}

func readZipEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errNoEntry(name)
}

type errNoEntry string

func (e errNoEntry) Error() string {
	return "missing archive entry: " + string(e)
}
