package fetcher

import (
	"context"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"sumbot/internal/apperr"
)

// RodFetcher uses a real browser (via rod) to render JS-heavy pages
// before handing the HTML to the article extractor.
type RodFetcher struct {
	BrowserURL string
	Timeout    time.Duration
}

func NewRodFetcher(browserURL string, timeout time.Duration) *RodFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RodFetcher{BrowserURL: browserURL, Timeout: timeout}
}

func (r *RodFetcher) Fetch(ctx context.Context, req Request) (*Page, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "无效的 URL: %s", req.URL)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	browser := rod.New().Context(ctx).Timeout(r.Timeout)
	if r.BrowserURL != "" {
		browser = browser.ControlURL(r.BrowserURL)
	}

	if err := browser.Connect(); err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "连接浏览器失败")
	}
	defer browser.MustClose()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "无法访问 URL")
	}
	defer page.MustClose()

	if err := page.WaitLoad(); err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "页面加载失败")
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "读取页面失败")
	}

	// The browser engine cannot observe the HTTP status; a rendered page
	// is treated as a 200.
	return &Page{
		URL:      u.String(),
		Status:   200,
		HTML:     htmlStr,
		Markdown: renderMarkdown(u.Hostname(), htmlStr),
	}, nil
}
