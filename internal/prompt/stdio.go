package prompt

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyIO holds the streams interactive prompts read from and write to.
type SurveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

// DefaultSurveyIO uses the process's standard streams.
var DefaultSurveyIO = SurveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

// AskOptions returns the survey options that bind prompts to these streams.
func (s SurveyIO) AskOptions() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(s.In, s.Out, s.Err)}
}

type fileReader struct{ io.Reader }

func (fileReader) Fd() uintptr { return 0 }

type fileWriter struct{ io.Writer }

func (fileWriter) Fd() uintptr { return 0 }

// NewTestSurveyIO returns streams backed by input and discarded output.
func NewTestSurveyIO(input string) SurveyIO {
	return SurveyIO{
		In:  fileReader{strings.NewReader(input)},
		Out: fileWriter{new(bytes.Buffer)},
		Err: fileWriter{new(bytes.Buffer)},
	}
}
