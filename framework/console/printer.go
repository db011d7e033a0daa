// Package console renders container state for terminals.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/km-arc/go-inject/framework/container"
)

// Printer handles formatted output to the terminal.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// NewPrinter writes to out and err. Colors are dropped when NO_COLOR is set
// or TERM is dumb.
func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		useColors = false
	}
	return &Printer{out: out, err: err, useColors: useColors}
}

// Out returns the writer for regular output.
func (p *Printer) Out() io.Writer { return p.out }

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	p.print(p.out, color.New(color.FgCyan), "", format, args...)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...any) {
	p.print(p.out, color.New(color.FgGreen), "[OK] ", format, args...)
}

// Error prints an error message.
func (p *Printer) Error(format string, args ...any) {
	p.print(p.err, color.New(color.FgRed), "[ERROR] ", format, args...)
}

// Title prints an underlined section title.
func (p *Printer) Title(title string) {
	line := strings.Repeat("─", len([]rune(title)))
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.out, "%s\n", line)
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, line)
}

// Violations prints every violation carried by err, or err itself when it
// is not a validation error.
func (p *Printer) Violations(err error) {
	var verr *container.ValidationError
	if !errors.As(err, &verr) {
		p.Error("%v", err)
		return
	}
	p.Error("%d violation(s)", len(verr.Violations))
	for _, v := range verr.Violations {
		p.Error("  %s: %s", v.Code, strings.TrimPrefix(v.Error(), "container: "))
	}
}

func (p *Printer) print(w io.Writer, c *color.Color, plainPrefix, format string, args ...any) {
	if p.useColors {
		c.Fprintf(w, format+"\n", args...)
		return
	}
	fmt.Fprintf(w, plainPrefix+format+"\n", args...)
}
