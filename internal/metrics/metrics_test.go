package metrics

import (
	"strings"
	"testing"
)

func TestRecordRequestExport(t *testing.T) {
	Reset()
	RecordRequest("POST", "/v1/summarize/url", 200, 120)
	RecordRequest("POST", "/v1/summarize/url", 200, 80)
	RecordRequest("POST", "/v1/summarize/url", 502, 30)

	out := Export()
	for _, want := range []string{
		`sumbot_http_requests_total{method="POST",path="/v1/summarize/url",status="200"} 2`,
		`sumbot_http_requests_total{method="POST",path="/v1/summarize/url",status="502"} 1`,
		`sumbot_http_request_duration_ms_sum{method="POST",path="/v1/summarize/url"} 230`,
		`sumbot_http_request_duration_ms_count{method="POST",path="/v1/summarize/url"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n%s", want, out)
		}
	}
}

func TestRecordSummarize(t *testing.T) {
	Reset()
	RecordSummarize("url", true)
	RecordSummarize("url", true)
	RecordSummarize("file", false)

	out := Export()
	for _, want := range []string{
		`sumbot_summarize_requests_total{op="url",success="true"} 2`,
		`sumbot_summarize_requests_total{op="file",success="false"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n%s", want, out)
		}
	}
}

func TestExportStableOrder(t *testing.T) {
	Reset()
	RecordRequest("GET", "/healthz", 200, 1)
	RecordRequest("GET", "/metrics", 200, 1)

	out := Export()
	healthz := strings.Index(out, `path="/healthz"`)
	metrics := strings.Index(out, `path="/metrics"`)
	if healthz < 0 || metrics < 0 || healthz > metrics {
		t.Fatalf("export not sorted by path:\n%s", out)
	}
}
