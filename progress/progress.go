// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package progress reports batch progress, as a redrawn bar on a terminal or
// as periodic log events otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/xultaeculcis/astrotools/batch"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const logSteps = 10

var labelStyle = lipgloss.NewStyle().Bold(true)

type Bar struct {
	lgr    *zap.SugaredLogger
	label  string
	out    io.Writer
	render bool
	model  bar.Model

	mu       sync.Mutex
	total    int
	done     int
	failed   int
	bytes    int64
	logEvery int
	started  time.Time
}

var _ batch.Progress = (*Bar)(nil)

// New returns a Bar drawing on stdout when it is a terminal. Logs go to
// stderr, so the redrawn line never interleaves with log output.
func New(lgr *zap.SugaredLogger, label string) *Bar {
	return newBar(lgr, label, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func newBar(lgr *zap.SugaredLogger, label string, out io.Writer, render bool) *Bar {
	return &Bar{
		lgr:    lgr,
		label:  label,
		out:    out,
		render: render,
		model:  bar.New(bar.WithDefaultGradient(), bar.WithWidth(40)),
	}
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.done = 0
	b.failed = 0
	b.bytes = 0
	b.started = time.Now()
	b.logEvery = total / logSteps
	if b.logEvery < 1 {
		b.logEvery = 1
	}
	if b.render {
		b.draw()
	}
}

func (b *Bar) Advance(result batch.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done++
	if result.Err != nil {
		b.failed++
	} else {
		b.bytes += result.Bytes
	}
	if b.render {
		b.draw()
		return
	}
	if b.done%b.logEvery == 0 || b.done == b.total {
		b.lgr.Infow("progress", "task", b.label, "done", b.done, "total", b.total, "failed", b.failed)
	}
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.render {
		b.draw()
		fmt.Fprintln(b.out)
	}
	b.lgr.Debugw("progress_finished", "task", b.label, "done", b.done, "failed", b.failed, "bytes", b.bytes, "elapsed", time.Since(b.started))
}

func (b *Bar) percent() float64 {
	if b.total == 0 {
		return 1
	}
	return float64(b.done) / float64(b.total)
}

func (b *Bar) draw() {
	fmt.Fprintf(b.out, "\r\033[2K%s %s %d/%d", labelStyle.Render(b.label), b.model.ViewAs(b.percent()), b.done, b.total)
	if b.failed > 0 {
		fmt.Fprintf(b.out, " (%d failed)", b.failed)
	}
}
