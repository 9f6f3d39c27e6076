// Package webext extracts clean article text from fetched HTML. Pages
// hosted on the WeChat article platform get a dedicated selector
// cascade; everything else goes through a generic main-content path.
// Both paths prefer structured paragraph extraction and degrade to a
// whole-page text scrape rather than failing outright.
package webext

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sumbot/internal/apperr"
	"sumbot/internal/model"
)

const wechatHost = "mp.weixin.qq.com"

// ExtractArticle parses htmlStr and returns the normalized article text
// for the page at pageURL.
func ExtractArticle(pageURL, htmlStr string) (model.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return model.ExtractionResult{}, apperr.Wrap(apperr.KindExtractionFailed, err, "解析 HTML 失败")
	}

	if isWeChatURL(pageURL) {
		return extractWeChat(doc)
	}
	return extractGeneric(doc), nil
}

func isWeChatURL(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), wechatHost)
}

// extractWeChat handles WeChat public-platform articles. Title, author,
// and body each have an ordered list of selector candidates; the first
// match wins per field.
func extractWeChat(doc *goquery.Document) (model.ExtractionResult, error) {
	var res model.ExtractionResult
	var lines []string

	res.Title = firstText(doc.Selection,
		"h1.rich_media_title",
		"h1#activity-name",
		"h1",
	)
	if res.Title != "" {
		lines = append(lines, "标题："+res.Title)
	}

	res.Author = firstText(doc.Selection,
		"a.rich_media_meta.rich_media_meta_link.rich_media_meta_nickname",
		"span.rich_media_meta_text",
		"a#js_name",
	)
	if res.Author != "" {
		lines = append(lines, "作者："+res.Author)
	}

	body := firstSelection(doc.Selection,
		"div.rich_media_content",
		"div#js_content",
		"div.content",
	)
	if body != nil {
		body.Find("script,style").Remove()

		paragraphs := body.Find("p, h1, h2, h3, h4, h5, h6, section")
		paragraphs.Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				lines = append(lines, text)
			}
		})

		if paragraphs.Length() == 0 {
			if text := strings.TrimSpace(body.Text()); text != "" {
				lines = append(lines, text)
			}
		}
	}

	if len(lines) == 0 {
		lines = strippedStrings(doc)
	}
	if len(lines) == 0 {
		return model.ExtractionResult{}, apperr.New(apperr.KindExtractionEmpty, "无法提取文章内容")
	}

	res.Text = strings.Join(lines, "\n")
	return res, nil
}

// extractGeneric handles arbitrary pages. There is no reliable universal
// content container, so it tries <main>, <article>, <body> in that order
// and falls back to every stripped text node on the page.
func extractGeneric(doc *goquery.Document) model.ExtractionResult {
	doc.Find("script,style").Remove()

	var res model.ExtractionResult
	var lines []string

	res.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if res.Title != "" {
		lines = append(lines, "标题："+res.Title)
	}

	if main := firstSelection(doc.Selection, "main", "article", "body"); main != nil {
		main.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				lines = append(lines, text)
			}
		})
	}

	if len(lines) == 0 {
		lines = strippedStrings(doc)
	}

	res.Text = strings.Join(lines, "\n")
	return res
}

// firstText returns the trimmed text of the first selector with a
// non-empty match.
func firstText(root *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		sel := root.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstSelection returns the first selector with any match, or nil.
func firstSelection(root *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		sel := root.Find(selector).First()
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// strippedStrings walks the document tree and collects every non-empty
// trimmed text node outside script/style elements, in document order.
func strippedStrings(doc *goquery.Document) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return lines
}
