package main

import (
	"fmt"

	"github.com/fatih/color"
)

// messageKind is the small, closed set of CLI output kinds the teacher's
// console.colorType groups prints by, trimmed here from that package's
// generic print/prompt pair down to what a one-shot listing tool needs.
type messageKind uint8

const (
	kindInfo messageKind = iota
	kindWarn
	kindError
	kindMember
)

// console adapts nabbar/golib/console's colorType → *color.Color map
// pattern: a color (or nil) per message kind, falling back to an
// uncolored Printf when colorized output is disabled or the kind carries
// no color.
type console struct {
	enabled bool
	colors  map[messageKind]*color.Color
}

func newConsole(enabled bool) *console {
	return &console{
		enabled: enabled,
		colors: map[messageKind]*color.Color{
			kindInfo:   color.New(color.FgCyan),
			kindWarn:   color.New(color.FgYellow),
			kindError:  color.New(color.FgRed, color.Bold),
			kindMember: color.New(color.FgGreen),
		},
	}
}

func (c *console) Printf(k messageKind, format string, args ...any) {
	if !c.enabled || c.colors[k] == nil {
		fmt.Printf(format, args...)
		return
	}
	_, _ = c.colors[k].Printf(format, args...)
}
