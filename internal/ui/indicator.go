// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/muesli/termenv"

	"github.com/jeranaias/opencoder/internal/ui/styles"
)

// =============================================================================
// BUSY INDICATOR
// =============================================================================

// Indicator animates a spinner on the current line while a request is in
// flight. Its goroutine only writes to the terminal. Start and Stop must be
// called from the same goroutine.
type Indicator struct {
	w        io.Writer
	term     *termenv.Output
	frames   []string
	interval time.Duration
	message  string
	enabled  bool

	stop chan struct{}
	done chan struct{}
}

// NewIndicator creates an indicator writing to w. A disabled indicator
// (non-interactive output) never draws anything.
func NewIndicator(w io.Writer, message string, enabled bool) *Indicator {
	frames := spinner.MiniDot
	return &Indicator{
		w:        w,
		term:     termenv.NewOutput(w),
		frames:   frames.Frames,
		interval: frames.FPS,
		message:  message,
		enabled:  enabled,
	}
}

// Start begins animating. Calling Start on a running indicator does nothing.
func (i *Indicator) Start() {
	if !i.enabled || i.stop != nil {
		return
	}
	i.stop = make(chan struct{})
	i.done = make(chan struct{})
	go i.run(i.stop, i.done)
}

func (i *Indicator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	frame := 0
	for {
		i.draw(frame)
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame = (frame + 1) % len(i.frames)
		}
	}
}

func (i *Indicator) draw(frame int) {
	fmt.Fprintf(i.w, "\r%s %s", styles.Prompt.Render(i.frames[frame]), styles.Muted.Render(i.message))
}

// Stop halts the animation, waits for the goroutine to exit and clears the
// line. It is safe to call when not running.
func (i *Indicator) Stop() {
	if i.stop == nil {
		return
	}
	close(i.stop)
	<-i.done
	i.stop, i.done = nil, nil

	io.WriteString(i.w, "\r")
	i.term.ClearLine()
}

// Running reports whether the animation goroutine is active.
func (i *Indicator) Running() bool {
	return i.stop != nil
}
