package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"

	"sumbot/internal/apperr"
)

// DefaultUserAgent is a realistic desktop-browser agent. Servers reject
// default Go user agents often enough that this is the fallback for
// every fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds a fetch when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Request represents a simplified fetch request.
type Request struct {
	URL     string
	Headers map[string]string
}

// Page is the raw fetch output before article extraction. Markdown is
// a best-effort rendition of the body used by the search path.
type Page struct {
	URL      string
	Status   int
	HTML     string
	Markdown string
}

// Fetcher defines the interface for URL fetchers.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Page, error)
}

// HTTPFetcher is the default implementation using net/http.
type HTTPFetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	logger        *slog.Logger
}

func NewHTTPFetcher(timeout time.Duration, userAgent string, respectRobots bool, logger *slog.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{
		client:        &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		respectRobots: respectRobots,
		logger:        logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Page, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "无效的 URL: %s", req.URL)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	if f.respectRobots {
		robotsData, err := fetchRobots(ctx, f.client, u, f.userAgent)
		if err != nil {
			// Fail open, but make the skipped gate visible to operators.
			f.logger.Warn("robots.txt 获取失败，跳过检查", "url", u.String(), "error", err)
		} else if robotsData != nil {
			grp := robotsData.FindGroup(f.userAgent)
			// Group rules match request paths, not absolute URLs.
			if !grp.Test(u.RequestURI()) {
				return nil, apperr.New(apperr.KindFetchFailed, "robots.txt 不允许抓取: %s", u.String())
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "构建请求失败")
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "无法访问 URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindFetchFailed, "无法访问 URL: HTTP %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFetchFailed, err, "读取响应失败")
	}

	htmlStr := string(bodyBytes)

	return &Page{
		URL:      u.String(),
		Status:   resp.StatusCode,
		HTML:     htmlStr,
		Markdown: renderMarkdown(u.Hostname(), htmlStr),
	}, nil
}

// renderMarkdown converts a page body to markdown, returning "" when
// conversion fails. The article extractor works off the HTML; markdown
// is only consumed by the search aggregation path.
func renderMarkdown(host, htmlStr string) string {
	converter := htmlmd.NewConverter(host, true, nil)
	markdown, err := converter.ConvertString(htmlStr)
	if err != nil {
		return ""
	}
	return markdown
}
