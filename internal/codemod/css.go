package codemod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/css/scanner"
)

// ErrInvalidStylesheet is returned when a stylesheet cannot be tokenized.
var ErrInvalidStylesheet = errors.New("invalid stylesheet")

const tailwindModule = "tailwindcss"

// AddTailwindImport puts @import "tailwindcss" at the top of a stylesheet,
// after a leading @charset rule. A file that already imports it is left alone.
func AddTailwindImport(_ context.Context, path string) error {
	return AddImport(path, tailwindModule)
}

// AddImport inserts an @import of target into the stylesheet at path unless
// one is already present. A missing file is created.
func AddImport(path, target string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	sheet, err := ParseStylesheet(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if sheet.Imports(target) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(sheet.WithImport(target)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Stylesheet is a tokenized CSS file.
type Stylesheet struct {
	tokens  []*scanner.Token
	imports []string
	// preamble is the number of leading tokens that must stay ahead of any
	// @import: a byte order mark and an @charset rule.
	preamble int
}

// ParseStylesheet tokenizes src and records its @import targets.
func ParseStylesheet(src string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	s := scanner.New(src)

	var (
		atRule      string
		significant int
		charsetLead bool
	)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return sheet, nil
		case scanner.TokenError:
			return nil, fmt.Errorf("line %d column %d: %s: %w", tok.Line, tok.Column, tok.Value, ErrInvalidStylesheet)
		}
		sheet.tokens = append(sheet.tokens, tok)

		switch tok.Type {
		case scanner.TokenBOM:
			sheet.preamble = len(sheet.tokens)
			continue
		case scanner.TokenS, scanner.TokenComment:
			continue
		}
		significant++

		switch {
		case tok.Type == scanner.TokenAtKeyword:
			atRule = strings.ToLower(tok.Value)
			charsetLead = significant == 1 && atRule == "@charset"
		case atRule == "@import" && (tok.Type == scanner.TokenString || tok.Type == scanner.TokenURI):
			sheet.imports = append(sheet.imports, importTarget(tok))
			atRule = "@import-done"
		case tok.Type == scanner.TokenChar && tok.Value == ";":
			if charsetLead {
				sheet.preamble = len(sheet.tokens)
				charsetLead = false
			}
			atRule = ""
		case tok.Type == scanner.TokenChar && (tok.Value == "{" || tok.Value == "}"):
			atRule = ""
		}
	}
}

// Imports reports whether the stylesheet already imports target.
func (s *Stylesheet) Imports(target string) bool {
	for _, imp := range s.imports {
		if imp == target {
			return true
		}
	}
	return false
}

// ImportTargets returns the @import targets in source order.
func (s *Stylesheet) ImportTargets() []string {
	return s.imports
}

// String regenerates the stylesheet from its tokens.
func (s *Stylesheet) String() string {
	return joinTokens(s.tokens)
}

// WithImport returns the stylesheet text with an @import of target placed
// before every rule except the preamble.
func (s *Stylesheet) WithImport(target string) string {
	rule := fmt.Sprintf("@import %q;", target)

	head := joinTokens(s.tokens[:s.preamble])
	tail := strings.TrimLeft(joinTokens(s.tokens[s.preamble:]), " \t\n")

	var sb strings.Builder
	sb.WriteString(head)
	if strings.HasSuffix(head, ";") {
		sb.WriteString("\n")
	}
	sb.WriteString(rule)
	sb.WriteString("\n")
	if tail != "" {
		sb.WriteString("\n")
		sb.WriteString(tail)
	}
	return sb.String()
}

func joinTokens(tokens []*scanner.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// importTarget extracts the module or URL from a string or url() token.
func importTarget(tok *scanner.Token) string {
	v := tok.Value
	if tok.Type == scanner.TokenURI {
		v = strings.TrimSpace(v[len("url(") : len(v)-1])
	}
	return strings.Trim(v, `"'`)
}
