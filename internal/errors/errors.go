// Package errors formats source-level diagnostics (lexer, parser) with a
// source line and a caret pointing at the offending column.
package errors

import (
	"fmt"
	"strings"

	"github.com/lucklove/dyon/internal/token"
)

// CompilerError represents a single lex/parse error with position and context.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// NewCompilerError creates a new compiler error.
func NewCompilerError(pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{
		Pos:     pos,
		Message: message,
		Source:  source,
		File:    file,
	}
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format formats the error message with source context.
// If color is true, ANSI color codes are used for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
	}

	sourceLine := e.getSourceLine(e.Pos.Line)
	if sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

// getSourceLine extracts a specific line from the source code (1-indexed).
func (e *CompilerError) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}

	return lines[lineNum-1]
}

// FormatErrors formats multiple compiler errors, each with source context.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}

	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("compilation failed with %d error(s):\n\n", len(errs)))

	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

// FromStringErrors converts string error messages (format: "message at line:column")
// into CompilerErrors so parser errors render the same way lexer errors do.
func FromStringErrors(stringErrors []string, source, file string) []*CompilerError {
	errs := make([]*CompilerError, 0, len(stringErrors))

	for _, errStr := range stringErrors {
		pos, message := parseErrorString(errStr)
		errs = append(errs, NewCompilerError(pos, message, source, file))
	}

	return errs
}

func parseErrorString(errStr string) (token.Position, string) {
	atIndex := strings.LastIndex(errStr, " at ")
	if atIndex == -1 {
		return token.Position{}, errStr
	}

	posStr := errStr[atIndex+4:]
	message := strings.TrimSpace(errStr[:atIndex])

	var line, column int
	if _, err := fmt.Sscanf(posStr, "%d:%d", &line, &column); err != nil {
		return token.Position{}, errStr
	}

	return token.Position{Line: line, Column: column}, message
}
