package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is implemented by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// DetectCapabilities inspects the terminal behind w, the writer stage
// progress is printed to. Anything that is not a terminal gets plain ASCII
// without color. NO_COLOR drops color; STACKGEN_ASCII=1 or TERM=dumb drops
// Unicode symbols.
func DetectCapabilities(w io.Writer) TerminalCapabilities {
	return detect(w, os.Getenv)
}

func detect(w io.Writer, getenv func(string) string) TerminalCapabilities {
	f, ok := w.(fdWriter)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return TerminalCapabilities{}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 0
	}
	return terminalCapabilities(width, getenv)
}

func terminalCapabilities(width int, getenv func(string) string) TerminalCapabilities {
	return TerminalCapabilities{
		IsTTY:           true,
		SupportsColor:   getenv("NO_COLOR") == "",
		SupportsUnicode: getenv("STACKGEN_ASCII") != "1" && getenv("TERM") != "dumb",
		Width:           width,
	}
}

// SelectSymbols picks stage markers and the spinner.CharSets index.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if !caps.SupportsUnicode {
		return ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", Skip: "[SKIP]", SpinnerSet: 9}
	}
	return ProgressSymbols{Checkmark: "✓", Failure: "✗", Skip: "↷", SpinnerSet: 14}
}
