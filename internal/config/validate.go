package config

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ValidationError locates a problem in a config file. Line and Column are
// set for syntax errors, Field for errors about a single key.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	default:
		return e.FilePath + ": " + e.Message
	}
}

// CheckJSONSyntax accepts blank input and well-formed JSON. Anything else
// yields a *ValidationError pointing at the offending byte.
func CheckJSONSyntax(data []byte, filePath string) error {
	if strings.TrimSpace(string(data)) == "" || gjson.ValidBytes(data) {
		return nil
	}

	// gjson only answers yes or no; the decoder knows the offset.
	var syntaxErr *stdjson.SyntaxError
	if err := stdjson.Unmarshal(data, new(any)); errors.As(err, &syntaxErr) {
		line, column := lineColumn(data, syntaxErr.Offset)
		return &ValidationError{FilePath: filePath, Line: line, Column: column, Message: syntaxErr.Error()}
	}
	return &ValidationError{FilePath: filePath, Message: "invalid JSON"}
}

// ValidateKnownKeys reports the first top-level key in a config file that
// is not in KnownKeys.
func ValidateKnownKeys(data []byte, filePath string) error {
	var unknown string
	gjson.ParseBytes(data).ForEach(func(key, _ gjson.Result) bool {
		if _, ok := KnownKeys[key.String()]; !ok {
			unknown = key.String()
			return false
		}
		return true
	})
	if unknown != "" {
		return &ValidationError{FilePath: filePath, Field: unknown, Message: ErrUnknownKey{Key: unknown}.Error()}
	}
	return nil
}

// lineColumn converts a byte offset into 1-based line and column numbers.
func lineColumn(data []byte, offset int64) (line, column int) {
	offset = min(offset, int64(len(data)))
	line, column = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line, column = line+1, 1
		} else {
			column++
		}
	}
	return line, column
}
