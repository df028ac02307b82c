// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/docsnip/internal/docsync"
)

// barProgress draws one progress bar per pipeline stage on stderr.
type barProgress struct {
	out *os.File
	bar *progressbar.ProgressBar
}

// newProgress returns a progress bar reporter when stderr is a terminal and
// nil otherwise.
func newProgress() docsync.Progress {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}
	return &barProgress{out: os.Stderr}
}

var stageDescriptions = map[string]string{
	docsync.StageExtract: "Extracting snippets",
	docsync.StageReplace: "Updating documents",
}

func (p *barProgress) Start(stage string, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(stageDescriptions[stage]),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) Advance(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		fmt.Fprintln(p.out)
	}
	p.bar = nil
}
