package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// source accumulates generated Go text. With directives enabled it
// attributes spliced user text to the .fng file with //line comments and
// restores the output file's own numbering afterwards.
type source struct {
	b          strings.Builder
	lines      int
	last       byte
	outName    string
	directives bool
}

func (s *source) WriteString(str string) {
	if str == "" {
		return
	}
	s.b.WriteString(str)
	s.lines += strings.Count(str, "\n")
	s.last = str[len(str)-1]
}

func (s *source) printf(format string, args ...any) {
	s.WriteString(fmt.Sprintf(format, args...))
}

func (s *source) newline() {
	if s.b.Len() > 0 && s.last != '\n' {
		s.WriteString("\n")
	}
}

// mapTo attributes the next line to line of filename.
func (s *source) mapTo(filename string, line int) {
	if !s.directives {
		return
	}
	s.newline()
	s.printf("//line %s:%d\n", filename, line)
}

// reset attributes the next line to the output file itself. The number is
// only right for the unformatted text; renumber fixes it after formatting.
func (s *source) reset() {
	if !s.directives {
		return
	}
	s.newline()
	s.printf("//line %s:%d\n", s.outName, s.lines+2)
}

func (s *source) Bytes() []byte {
	return []byte(s.b.String())
}

// renumber rewrites every directive naming the output file so that it
// points at the line that follows it in the formatted output.
func renumber(content []byte, outName string) []byte {
	prefix := []byte("//line " + outName + ":")
	lines := bytes.Split(content, []byte("\n"))
	for i, line := range lines {
		if bytes.HasPrefix(line, prefix) {
			lines[i] = append(append([]byte{}, prefix...), strconv.Itoa(i+2)...)
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// trimLeadingLines drops the whitespace-only lines text starts with and
// returns the line its first remaining byte is on. gofmt collapses runs of
// blank lines, which would otherwise shift a directive's mapping.
func trimLeadingLines(text string, line int) (string, int) {
	ws := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	nl := strings.LastIndexByte(text[:ws], '\n')
	if nl < 0 {
		return text, line
	}
	return text[nl+1:], line + strings.Count(text[:nl+1], "\n")
}
