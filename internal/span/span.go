// Package span tracks byte ranges in source files for diagnostics.
//
// Every token, AST node, and HIR node produced by the frontend carries a
// Span so later stages (type checker, evaluator, CLI) can point back at
// the exact source text responsible for a diagnostic. Spans are immutable
// once the lexer produces them.
package span

import "fmt"

// FileID identifies a source file within a SourceSet. IDs are assigned
// from 0 in the order files are added, so the zero value is the first
// file's ID.
type FileID int32

// Position is a single point in a source file: a 1-based line and
// column (column counted in runes) plus the raw byte offset used for
// slicing the underlying text.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is a half-open byte range [Start, End) within File.
type Span struct {
	File  FileID
	Start Position
	End   Position
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// String renders "file:line:col" for debug output; callers that need the
// file name should use SourceSet.Describe instead.
func (s Span) String() string {
	return fmt.Sprintf("<file %d>:%d:%d", s.File, s.Start.Line, s.Start.Column)
}

// Join returns the smallest span covering both a and b. Both must belong
// to the same file.
func Join(a, b Span) Span {
	s := a
	if b.Start.Offset < s.Start.Offset {
		s.Start = b.Start
	}
	if b.End.Offset > s.End.Offset {
		s.End = b.End
	}
	return s
}

// SourceFile is one compiled input: its name (for diagnostics) and its
// full text, plus a precomputed table of line-start offsets so Render
// can slice out a single line in O(log n).
type SourceFile struct {
	ID         FileID
	Name       string
	Text       string
	lineStarts []int
}

func newSourceFile(id FileID, name, text string) *SourceFile {
	f := &SourceFile{ID: id, Name: name, Text: text}
	f.lineStarts = append(f.lineStarts, 0)
	for i, b := range []byte(text) {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Line returns the 1-indexed source line text, without its trailing
// newline. Returns "" for an out-of-range line number.
func (f *SourceFile) Line(lineNum int) string {
	if lineNum < 1 || lineNum > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[lineNum-1]
	end := len(f.Text)
	if lineNum < len(f.lineStarts) {
		end = f.lineStarts[lineNum] - 1
	}
	if end < start {
		end = start
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	line := f.Text[start:end]
	// Strip a trailing \r for files with CRLF endings.
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// SourceSet owns every file loaded during one compilation job. Spans only
// carry a FileID; SourceSet is how a diagnostic renderer turns that back
// into a name and text. It is write-once: files are added as they are
// loaded and never removed or mutated.
type SourceSet struct {
	files []*SourceFile
}

// NewSourceSet returns an empty file registry.
func NewSourceSet() *SourceSet {
	return &SourceSet{}
}

// Add registers a new file and returns its FileID.
func (s *SourceSet) Add(name, text string) FileID {
	id := FileID(len(s.files))
	s.files = append(s.files, newSourceFile(id, name, text))
	return id
}

// File returns the SourceFile for id, or nil if id is unknown.
func (s *SourceSet) File(id FileID) *SourceFile {
	if int(id) < 0 || int(id) >= len(s.files) {
		return nil
	}
	return s.files[id]
}

// Describe renders "name:line:col" for a span, falling back to the raw
// Span.String() form when the file is not registered.
func (s *SourceSet) Describe(sp Span) string {
	f := s.File(sp.File)
	if f == nil {
		return sp.String()
	}
	return fmt.Sprintf("%s:%d:%d", f.Name, sp.Start.Line, sp.Start.Column)
}
