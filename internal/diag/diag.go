// Package diag implements a uniform diagnostic record: severity, code,
// primary span, message, notes, fix-its — rendered as a source snippet
// with a caret pointing at the offending span. A batching Sink holds
// every error a stage collects before moving on: lex/parse errors are
// collected and reported together, and one bad `let` must not suppress
// checking of the next.
package diag

import (
	"fmt"
	"strings"

	"github.com/neve-lang/neve/internal/span"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	// Error severities abort the stage (or, for EvalError, the job).
	Error Severity = iota
	// Warning severities (non-exhaustive match, unreachable arm) are
	// reported but never block evaluation.
	Warning
	// Note is an auxiliary severity used only for the Notes attached to
	// another diagnostic; it is never emitted on its own.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Code is the stable identifier for a diagnostic kind (LexError,
// ParseError, ResolveError, TypeError, EvalError, DerivationError,
// StoreError, BuilderError, FetchError), plus a sub-code string for the
// specific condition.
type Code struct {
	Kind string // e.g. "ResolveError"
	Sub  string // e.g. "cyclic re-export"
}

func (c Code) String() string {
	if c.Sub == "" {
		return c.Kind
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.Sub)
}

// FixIt is a suggested source edit rendered as a "help" note.
type FixIt struct {
	Message     string
	Span        span.Span
	Replacement string
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Primary  span.Span
	Message  string
	Notes    []string
	FixIts   []FixIt
}

// Sink collects diagnostics for one compilation job or one top-level
// definition: a bad definition doesn't suppress checking of the next
// one.
type Sink struct {
	diags []Diagnostic
}

// NewSink returns an empty diagnostic collector.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Errorf is a convenience for the common case of a single-span error
// diagnostic with no notes or fix-its.
func (s *Sink) Errorf(sp span.Span, kind, format string, args ...any) {
	s.Add(Diagnostic{
		Severity: Error,
		Code:     Code{Kind: kind},
		Primary:  sp,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf is Errorf's Warning counterpart, used for non-exhaustive match
// and unreachable-arm diagnostics.
func (s *Sink) Warnf(sp span.Span, kind, format string, args ...any) {
	s.Add(Diagnostic{
		Severity: Warning,
		Code:     Code{Kind: kind},
		Primary:  sp,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns every diagnostic added so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any collected diagnostic has Error severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends every diagnostic from other into s, preserving order.
// Used to fold a per-definition Sink into the job-wide Sink.
func (s *Sink) Merge(other *Sink) {
	s.diags = append(s.diags, other.diags...)
}

// Renderer formats diagnostics against a SourceSet for CLI output.
type Renderer struct {
	Sources *span.SourceSet
	Color   bool
}

// NewRenderer builds a Renderer. Color should be false whenever NO_COLOR
// is set or stdout is not a terminal; that decision belongs to the CLI,
// not this package.
func NewRenderer(sources *span.SourceSet, color bool) *Renderer {
	return &Renderer{Sources: sources, Color: color}
}

// Render formats a single diagnostic: a header line, a source snippet
// with a caret, the message, then any notes and fix-its.
func (r *Renderer) Render(d Diagnostic) string {
	var sb strings.Builder

	loc := r.Sources.Describe(d.Primary)
	fmt.Fprintf(&sb, "%s: %s: %s\n", loc, d.Severity, d.Message)
	if d.Code.Kind != "" {
		fmt.Fprintf(&sb, "  [%s]\n", d.Code)
	}

	if f := r.Sources.File(d.Primary.File); f != nil {
		line := f.Line(d.Primary.Start.Line)
		if line != "" {
			prefix := fmt.Sprintf("%4d | ", d.Primary.Start.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")

			col := d.Primary.Start.Column
			if col < 1 {
				col = 1
			}
			sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
			width := d.Primary.End.Column - d.Primary.Start.Column
			if width < 1 {
				width = 1
			}
			if r.Color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString(strings.Repeat("^", width))
			if r.Color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	for _, n := range d.Notes {
		fmt.Fprintf(&sb, "  note: %s\n", n)
	}
	for _, f := range d.FixIts {
		fmt.Fprintf(&sb, "  help: %s\n", f.Message)
	}

	return sb.String()
}

// RenderAll renders every diagnostic, separated by blank lines.
func (r *Renderer) RenderAll(diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = r.Render(d)
	}
	return strings.Join(parts, "\n")
}
