package pipeline

import (
	"github.com/valpere/transly/internal"
)

// splitShare is the part of the progress range attributed to splitting the
// text; the rest is attributed to translating chunks.
const splitShare = 10

// progress forwards percentages to a caller's callback, dropping values that
// would go backwards and holding at 99 until done is called.
type progress struct {
	fn   internal.ProgressFunc
	last int
}

func newProgress(fn internal.ProgressFunc) *progress {
	return &progress{fn: fn, last: -1}
}

func (p *progress) report(pct int) {
	if p.fn == nil {
		return
	}
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	if pct <= p.last {
		return
	}
	p.last = pct
	p.fn(pct)
}

func (p *progress) split(consumed, total int) {
	if total <= 0 {
		return
	}
	p.report(splitShare * consumed / total)
}

func (p *progress) translated(done, total int) {
	if total <= 0 {
		return
	}
	p.report(splitShare + (100-splitShare)*done/total)
}

func (p *progress) done() {
	if p.fn == nil {
		return
	}
	p.last = 100
	p.fn(100)
}
