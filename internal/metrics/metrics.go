package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and summarize
// operations. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	summarizeTotal = make(map[sumKey]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type sumKey struct {
	Op      string
	Success string
}

// RecordRequest increments the request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordSummarize increments summarize operation counters per request
// type (url, file, search).
func RecordSummarize(op string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	summarizeTotal[sumKey{Op: op, Success: s}]++
}

// Reset clears all counters. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	requestsTotal = make(map[reqKey]int64)
	latencyMsSum = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	summarizeTotal = make(map[sumKey]int64)
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP sumbot_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE sumbot_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		fmt.Fprintf(&b, "sumbot_http_requests_total{method=%q,path=%q,status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# HELP sumbot_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE sumbot_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP sumbot_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE sumbot_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		fmt.Fprintf(&b, "sumbot_http_request_duration_ms_sum{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "sumbot_http_request_duration_ms_count{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# HELP sumbot_summarize_requests_total Total summarize operations by type\n")
	b.WriteString("# TYPE sumbot_summarize_requests_total counter\n")

	var sumKeys []sumKey
	for k := range summarizeTotal {
		sumKeys = append(sumKeys, k)
	}
	sort.Slice(sumKeys, func(i, j int) bool {
		if sumKeys[i].Op != sumKeys[j].Op {
			return sumKeys[i].Op < sumKeys[j].Op
		}
		return sumKeys[i].Success < sumKeys[j].Success
	})

	for _, k := range sumKeys {
		fmt.Fprintf(&b, "sumbot_summarize_requests_total{op=%q,success=%q} %d\n",
			k.Op, k.Success, summarizeTotal[k])
	}

	return b.String()
}
