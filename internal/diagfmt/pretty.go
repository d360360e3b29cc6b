// Package diagfmt renders diagnostic bags for terminal output.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"typedoc/internal/diag"
)

// PrettyOpts controls human-readable diagnostic output.
type PrettyOpts struct {
	Color bool
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	infoLabel    = color.New(color.FgCyan)
	targetStyle  = color.New(color.Faint)
)

// Pretty writes one line per diagnostic: severity, code, location when
// known, message, and the affected target.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		label := severityLabel(d.Severity)
		if opts.Color {
			label = severityColor(d.Severity).Sprint(label)
		}
		loc := ""
		if d.Path != "" {
			loc = fmt.Sprintf("%s:%d: ", d.Path, d.Line)
		}
		target := ""
		if d.Target != "" {
			target = " (" + d.Target + ")"
			if opts.Color {
				target = targetStyle.Sprint(target)
			}
		}
		fmt.Fprintf(w, "%s[%s]: %s%s%s\n", label, d.Code, loc, d.Message, target)
	}
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorLabel
	case diag.SevWarning:
		return warningLabel
	default:
		return infoLabel
	}
}
