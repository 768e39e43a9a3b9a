// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// RefreshPeriod is the minimum time between terminal updates.
var RefreshPeriod = time.Millisecond * 100

// ProgressBar displays the progression of the steps of an application run.
//
// Its OnStep method can be used directly as polybench.RunOptions.OnStep.
type ProgressBar struct {
	mu       sync.Mutex
	w        io.Writer
	termenv  *termenv.Output
	bar      *progressbar.ProgressBar
	numSteps int
	closed   bool
}

// NewProgressBar creates a progress bar of numSteps steps written to w, with the given description.
// The cursor is hidden until Close is called.
func NewProgressBar(w io.Writer, description string, numSteps int) *ProgressBar {
	pBar := &ProgressBar{
		w:        w,
		termenv:  termenv.NewOutput(w),
		numSteps: numSteps,
	}
	pBar.bar = progressbar.NewOptions(numSteps,
		progressbar.OptionSetDescription(fmt.Sprintf("%-24s", description)),
		progressbar.OptionSetWriter(w),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("steps"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionThrottle(RefreshPeriod),
		progressbar.OptionShowCount(),
	)
	pBar.termenv.HideCursor()
	return pBar
}

// OnStep updates the bar to done steps out of total.
func (pBar *ProgressBar) OnStep(done, total int) {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	if pBar.closed {
		return
	}
	if total != pBar.numSteps {
		pBar.numSteps = total
		pBar.bar.ChangeMax(total)
	}
	_ = pBar.bar.Set(done)
}

// Close finishes the bar and restores the cursor. It can be called more than once.
func (pBar *ProgressBar) Close() error {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	if pBar.closed {
		return nil
	}
	pBar.closed = true
	err := pBar.bar.Finish()
	pBar.termenv.ShowCursor()
	_, _ = fmt.Fprintln(pBar.w)
	return errors.Wrap(err, "failed to finish progress bar")
}
