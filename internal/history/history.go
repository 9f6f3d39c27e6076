// Package history records every processed URL in a date-partitioned
// append-only log under the configured history directory.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sumbot/internal/apperr"
)

// DefaultDir is used when no history directory is configured.
const DefaultDir = "output/urlhistory"

// Recorder appends URL history lines to {dir}/{YYYYMMDD}.md.
type Recorder struct {
	dir string
	now func() time.Time
}

func NewRecorder(dir string) *Recorder {
	if dir == "" {
		dir = DefaultDir
	}
	return &Recorder{dir: dir, now: time.Now}
}

// Record appends one line for the given URL. The append is a single
// write on an O_APPEND descriptor, so concurrent records never
// interleave within a line.
func (r *Recorder) Record(url string, tags []string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindHistoryWriteFailed, err, "创建历史目录失败")
	}

	now := r.now()
	path := filepath.Join(r.dir, now.Format("20060102")+".md")

	hashedTags := make([]string, 0, len(tags))
	for _, tag := range tags {
		hashedTags = append(hashedTags, "#"+tag)
	}
	line := fmt.Sprintf("\n- %s | %s | %s", url, now.Format("2006-01-02 15:04:05"), strings.Join(hashedTags, " "))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return apperr.Wrap(apperr.KindHistoryWriteFailed, err, "打开历史文件失败")
	}

	_, writeErr := f.WriteString(line)
	closeErr := f.Close()
	if writeErr != nil {
		return apperr.Wrap(apperr.KindHistoryWriteFailed, writeErr, "写入历史记录失败")
	}
	if closeErr != nil {
		return apperr.Wrap(apperr.KindHistoryWriteFailed, closeErr, "写入历史记录失败")
	}

	return nil
}
