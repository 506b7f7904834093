package input

import (
	"io"
	"math"
	"sync"

	"github.com/gosuri/uiprogress"
)

// Progress is an io.Reader that shows how much of its total was read on a
// progress bar.
type Progress struct {
	r   io.Reader
	p   *uiprogress.Progress
	bar *uiprogress.Bar

	read int64
	once sync.Once
}

// NewProgress starts rendering a bar of total bytes to w.
func NewProgress(r io.Reader, total int64, w io.Writer) *Progress {
	p := uiprogress.New()
	p.SetOut(w)

	bar := p.AddBar(barTotal(total))
	bar.AppendCompleted()
	bar.PrependElapsed()

	p.Start()

	return &Progress{r: r, p: p, bar: bar}
}

func (p *Progress) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	// Set refuses values above the total, f.ex. for a growing file
	_ = p.bar.Set(int(min(p.read, int64(p.bar.Total))))
	return n, err
}

// Stop stops rendering. It is safe to call more than once.
func (p *Progress) Stop() {
	p.once.Do(p.p.Stop)
}

// Count returns the number of bytes read so far.
func (p *Progress) Count() int64 {
	return p.read
}

// barTotal fits a byte count in the int of the bar, which is 32 bits wide on
// some platforms.
func barTotal(total int64) int {
	return int(min(max(total, 1), math.MaxInt))
}
