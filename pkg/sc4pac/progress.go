package sc4pac

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressReporter drives a multi-bar terminal display for a resolve-stage-
// publish run, wired into Handlers so the core package stays decoupled
// from any particular terminal library.
type ProgressReporter struct {
	progress *mpb.Progress
	bars     map[string]*mpb.Bar
}

// NewProgressReporter constructs a ProgressReporter writing to out.
func NewProgressReporter(out io.Writer) *ProgressReporter {
	return &ProgressReporter{
		progress: mpb.New(mpb.WithOutput(out), mpb.WithWidth(40)),
		bars:     map[string]*mpb.Bar{},
	}
}

// Handlers returns a Handlers wired to update this reporter's bars, one per
// distinct download URL.
func (r *ProgressReporter) Handlers() *Handlers {
	return &Handlers{
		DownloadProgress: func(url string, nread, total int64) {
			bar, ok := r.bars[url]
			if !ok {
				bar = r.progress.AddBar(total,
					mpb.PrependDecorators(decor.Name(displayName(url), decor.WC{W: 20, C: decor.DindentRight})),
					mpb.AppendDecorators(decor.Any(func(st decor.Statistics) string {
						return fmt.Sprintf("%s/%s", humanize.Bytes(uint64(st.Current)), humanize.Bytes(uint64(st.Total)))
					})),
				)
				r.bars[url] = bar
			}
			bar.SetCurrent(nread)
		},
		DownloadComplete: func(url string) {
			if bar, ok := r.bars[url]; ok {
				bar.SetCurrent(bar.Current())
				delete(r.bars, url)
			}
		},
	}
}

func displayName(url string) string {
	if i := len(url) - 1; i >= 0 {
		for j := i; j >= 0; j-- {
			if url[j] == '/' {
				return url[j+1:]
			}
		}
	}
	return url
}

// Wait blocks until every active bar has completed rendering.
func (r *ProgressReporter) Wait() {
	r.progress.Wait()
}
