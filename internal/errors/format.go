package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgRed, color.Bold)
	usageColor   = color.New(color.FgCyan)
	fixColor     = color.New(color.FgYellow)
)

// FormatError renders err with colored headings. Colors are dropped
// automatically when stdout is not a terminal or NO_COLOR is set.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return format(err, headingColor.Sprint, usageColor.Sprint, fixColor.Sprint)
}

// FormatErrorPlain renders err without any color codes.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return format(err, fmt.Sprint, fmt.Sprint, fmt.Sprint)
}

func format(err *CLIError, heading, usage, fix func(...any) string) string {
	var sb strings.Builder
	sb.WriteString(heading(err.Category.String() + ":"))
	sb.WriteString(" ")
	sb.WriteString(err.Message)
	sb.WriteString("\n")

	if err.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(usage("Usage:"))
		sb.WriteString(" ")
		sb.WriteString(err.Usage)
		sb.WriteString("\n")
	}

	if len(err.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(fix("To fix this:"))
		sb.WriteString("\n")
		for i, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
		}
	}
	return sb.String()
}

// FprintError writes err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
