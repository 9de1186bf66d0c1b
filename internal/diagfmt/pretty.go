package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"graft/internal/diag"
	"graft/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает:
// <path>:<line>:<col>: <SEV> [<CODE>]: <Message>
// затем Notes с отступом в том же формате. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fileSet *source.FileSet, opts PrettyOpts) {
	sevColors := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	for _, c := range sevColors {
		if !opts.Color {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	for _, d := range bag.Items() {
		sev := sevColors[d.Severity].Sprint(d.Severity.String())
		fmt.Fprintf(w, "%s: %s [%s]: %s\n", location(d.Primary, fileSet, opts.PathMode), sev, d.Code.ID(), d.Message)

		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", location(note.Span, fileSet, opts.PathMode), note.Msg)
		}
	}
}

// location печатает "<path>:<line>:<col>"; для пустого span (диагностики
// уровня проекта) — "<graft>".
func location(span source.Span, fileSet *source.FileSet, mode PathMode) string {
	if span == (source.Span{}) {
		return "<graft>"
	}
	f := fileSet.Get(span.File)
	start, _ := fileSet.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.formatMode(), fileSet.BaseDir()), start.Line, start.Col)
}
