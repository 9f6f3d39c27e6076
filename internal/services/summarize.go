package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"sumbot/internal/apperr"
	"sumbot/internal/config"
	"sumbot/internal/docext"
	"sumbot/internal/fetcher"
	"sumbot/internal/model"
	"sumbot/internal/search"
	"sumbot/internal/webext"
)

// URLRequest asks for a summary of a web page.
type URLRequest struct {
	URL       string
	APIKey    string
	Tags      []string
	MaxLength int
}

// FileRequest asks for a summary of an uploaded document.
type FileRequest struct {
	Filename string
	Data     []byte
	APIKey   string
}

// SearchRequest asks for a summary of aggregated search results.
type SearchRequest struct {
	Query      string
	MaxResults int
}

// AIClient is the summarization backend seen by the orchestrator.
type AIClient interface {
	Summarize(ctx context.Context, content, keyOverride string, maxTokens int) (string, error)
	FollowUpQuestions(ctx context.Context, content, summary, keyOverride string) ([]string, error)
}

// HistoryRecorder records processed URLs.
type HistoryRecorder interface {
	Record(url string, tags []string) error
}

// SummarizeService composes extractors and the AI client per request
// type. Every downstream failure surfaces as an apperr kind; nothing
// panics through this layer.
type SummarizeService interface {
	SummarizeURL(ctx context.Context, req *URLRequest) (*model.SummaryResult, error)
	SummarizeFile(ctx context.Context, req *FileRequest) (*model.SummaryResult, error)
	SummarizeSearch(ctx context.Context, req *SearchRequest) (*model.SummaryResult, error)
}

type summarizeService struct {
	cfg      *config.Config
	fetcher  fetcher.Fetcher
	ai       AIClient
	history  HistoryRecorder
	searcher search.Provider
	logger   *slog.Logger
}

// NewSummarizeService constructs the orchestrator. searcher may be nil
// when search is disabled in configuration.
func NewSummarizeService(cfg *config.Config, f fetcher.Fetcher, ai AIClient, h HistoryRecorder, searcher search.Provider, logger *slog.Logger) SummarizeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &summarizeService{
		cfg:      cfg,
		fetcher:  f,
		ai:       ai,
		history:  h,
		searcher: searcher,
		logger:   logger,
	}
}

// SummarizeURL records the URL in history first, then fetches and
// extracts the page, rejects empty content before any AI call, and
// returns the summary with the source URL. A fetch or extraction
// failure after the history record does not roll the record back.
func (s *summarizeService) SummarizeURL(ctx context.Context, req *URLRequest) (*model.SummaryResult, error) {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "缺少 url")
	}

	if err := s.history.Record(req.URL, req.Tags); err != nil {
		return nil, err
	}

	page, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: req.URL})
	if err != nil {
		return nil, err
	}

	res, err := webext.ExtractArticle(page.URL, page.HTML)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(res.Text)
	if content == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "URL内容为空")
	}

	s.logger.Info("获取到URL内容", "url", req.URL, "content_length", len(content))

	summary, err := s.ai.Summarize(ctx, content, req.APIKey, req.MaxLength)
	if err != nil {
		return nil, err
	}

	return &model.SummaryResult{Summary: summary, SourceURL: req.URL}, nil
}

// SummarizeFile extracts text by file extension, summarizes it, and
// additionally generates follow-up questions.
func (s *summarizeService) SummarizeFile(ctx context.Context, req *FileRequest) (*model.SummaryResult, error) {
	if req == nil || strings.TrimSpace(req.Filename) == "" || len(req.Data) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "缺少文件")
	}

	text, err := docext.Extract(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "文件内容为空")
	}

	summary, err := s.ai.Summarize(ctx, content, req.APIKey, 0)
	if err != nil {
		return nil, err
	}

	questions, err := s.ai.FollowUpQuestions(ctx, content, summary, req.APIKey)
	if err != nil {
		return nil, err
	}

	return &model.SummaryResult{Summary: summary, FollowUpQuestions: questions}, nil
}

// SummarizeSearch runs the query against the configured provider,
// fetches the result pages with bounded concurrency, aggregates their
// content, and summarizes the aggregate. Per-result fetch failures are
// tolerated; such results contribute title and snippet only.
func (s *summarizeService) SummarizeSearch(ctx context.Context, req *SearchRequest) (*model.SummaryResult, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "缺少 query")
	}
	if s.searcher == nil {
		return nil, apperr.New(apperr.KindSearchFailed, "搜索功能未启用")
	}

	limit := req.MaxResults
	if limit <= 0 {
		limit = s.cfg.Search.MaxResults
	}
	if limit <= 0 {
		limit = 5
	}

	results, err := s.searcher.Search(ctx, &search.Request{Query: req.Query, Limit: limit})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSearchFailed, err, "搜索失败")
	}
	if len(results) == 0 {
		return nil, apperr.New(apperr.KindSearchFailed, "未找到搜索结果")
	}

	sections := s.fetchResultContent(ctx, results)

	var sources []string
	for _, r := range results {
		if strings.TrimSpace(r.URL) != "" {
			sources = append(sources, r.URL)
		}
	}

	content := strings.TrimSpace(strings.Join(sections, "\n\n"))
	if content == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "搜索内容为空")
	}

	summary, err := s.ai.Summarize(ctx, content, "", 0)
	if err != nil {
		return nil, err
	}

	return &model.SummaryResult{Summary: summary, Sources: sources}, nil
}

// maxResultContentRunes caps how much of each fetched result page makes
// it into the aggregate, keeping the prompt within model limits.
const maxResultContentRunes = 2000

func (s *summarizeService) fetchResultContent(ctx context.Context, results []search.Result) []string {
	maxConcurrent := s.cfg.Search.MaxConcurrentFetches
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	sections := make([]string, len(results))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, r := range results {
		wg.Add(1)
		go func(i int, r search.Result) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			section := fmt.Sprintf("标题：%s\n摘要：%s", r.Title, r.Description)
			if strings.TrimSpace(r.URL) != "" {
				page, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: r.URL})
				if err != nil {
					s.logger.Warn("抓取搜索结果失败", "url", r.URL, "error", err)
				} else if body := strings.TrimSpace(page.Markdown); body != "" {
					section += "\n正文：" + truncateRunes(body, maxResultContentRunes)
				}
			}
			sections[i] = section
		}(i, r)
	}

	wg.Wait()
	return sections
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
