package http

// URLSummarizeRequest is the payload for POST /v1/summarize/url.
type URLSummarizeRequest struct {
	URL       string   `json:"url"`
	APIKey    string   `json:"api_key,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
}

type URLSummarizeResponse struct {
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url,omitempty"`
}

type FileSummarizeResponse struct {
	Summary           string   `json:"summary"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
}

// SearchSummarizeRequest is the payload for POST /v1/summarize/search.
type SearchSummarizeRequest struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results,omitempty"`
}

type SearchSummarizeResponse struct {
	Summary string   `json:"summary"`
	Sources []string `json:"sources,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}
