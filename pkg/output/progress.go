package output

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

const downloadTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// DownloadProgress shows a byte progress bar for package downloads.
// It satisfies transfer.ProgressReporter.
type DownloadProgress struct {
	writer io.Writer

	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewDownloadProgress creates a progress reporter drawing on writer
func NewDownloadProgress(writer io.Writer) *DownloadProgress {
	return &DownloadProgress{writer: writer}
}

// Track wraps r so that reads advance the bar. total may be unknown (<= 0).
func (p *DownloadProgress) Track(r io.Reader, total int64) io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar := pb.New64(total).
		SetTemplate(downloadTemplate).
		SetWriter(p.writer).
		SetRefreshRate(200*time.Millisecond).
		Set(pb.Bytes, true).
		Set("prefix", "  ")
	if total <= 0 {
		bar.SetTemplateString(`{{string . "prefix"}}{{counters . }} {{speed . }}`)
	}
	p.bar = bar.Start()
	return p.bar.NewProxyReader(r)
}

// Done stops the bar, if one is running
func (p *DownloadProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
