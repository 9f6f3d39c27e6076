package model

// ExtractionResult is the normalized output of any content extractor.
// Text is the newline-joined article body; Title and Author are filled
// when the source exposes them.
type ExtractionResult struct {
	Text   string
	Title  string
	Author string
}

// SummaryResult is the outcome of a summarize operation. SourceURL is
// set on the URL path, FollowUpQuestions on the file path, and Sources
// on the search path.
type SummaryResult struct {
	Summary           string   `json:"summary"`
	SourceURL         string   `json:"source_url,omitempty"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	Sources           []string `json:"sources,omitempty"`
}
