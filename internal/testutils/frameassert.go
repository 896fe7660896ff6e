package testutils

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/mcuadros/go-defaults"
)

// TestingT matches the methods we need from testing.T.
type TestingT interface {
	Errorf(format string, args ...interface{})
}

// FrameAssertOptions controls how rendered frames are normalized before
// comparison. Rendered output carries ANSI escapes and alignment padding
// that tests usually want to ignore.
type FrameAssertOptions struct {
	StripANSI                bool `default:"true"`
	IgnoreTrailingWhitespace bool `default:"true"`
	IgnoreEmptyLines         bool `default:"false"`
	ColorizeDiff             bool `default:"false"`
}

// FrameOption is a functional option for configuring a FrameAsserter.
type FrameOption func(*FrameAssertOptions)

// WithIgnoreEmptyLines sets whether empty lines are dropped before comparing.
func WithIgnoreEmptyLines(ignore bool) FrameOption {
	return func(opts *FrameAssertOptions) { opts.IgnoreEmptyLines = ignore }
}

// WithColorizedDiff enables colored unified diff output on failure.
func WithColorizedDiff(enable bool) FrameOption {
	return func(opts *FrameAssertOptions) { opts.ColorizeDiff = enable }
}

// FrameAsserter compares rendered terminal frames line by line and reports
// mismatches as a unified diff.
type FrameAsserter struct {
	t       TestingT
	options FrameAssertOptions
}

// NewFrameAsserter creates a FrameAsserter with default options.
func NewFrameAsserter(t TestingT, opts ...FrameOption) *FrameAsserter {
	options := FrameAssertOptions{}
	defaults.SetDefaults(&options)
	for _, opt := range opts {
		opt(&options)
	}
	return &FrameAsserter{t: t, options: options}
}

// Equal compares an actual rendered frame against the expected text.
func (fa *FrameAsserter) Equal(expected, actual string) {
	normExpected := fa.normalize(expected)
	normActual := fa.normalize(actual)
	if normExpected == normActual {
		return
	}

	edits := myers.ComputeEdits("", normExpected, normActual)
	unified := fmt.Sprint(gotextdiff.ToUnified("expected", "actual", normExpected, edits))
	fa.t.Errorf("Frame mismatch - unified diff:\n%s", fa.colorize(unified))
}

// Contains asserts that the normalized frame contains the given line.
func (fa *FrameAsserter) Contains(frame, want string) {
	if !strings.Contains(fa.normalize(frame), want) {
		fa.t.Errorf("Frame does not contain %q:\n%s", want, fa.normalize(frame))
	}
}

func (fa *FrameAsserter) normalize(text string) string {
	if fa.options.StripANSI {
		text = stripANSI(text)
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if fa.options.IgnoreTrailingWhitespace {
			line = strings.TrimRight(line, " \t\r")
		}
		if fa.options.IgnoreEmptyLines && line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (fa *FrameAsserter) colorize(diff string) string {
	if !fa.options.ColorizeDiff {
		return diff
	}

	red := color.New(color.FgRed)
	red.EnableColor()
	green := color.New(color.FgGreen)
	green.EnableColor()
	cyan := color.New(color.FgCyan)
	cyan.EnableColor()

	var out []string
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			out = append(out, cyan.Sprint(line))
		case strings.HasPrefix(line, "-"):
			out = append(out, red.Sprint(line))
		case strings.HasPrefix(line, "+"):
			out = append(out, green.Sprint(line))
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// stripANSI removes CSI escape sequences (colors, cursor movement, clears).
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && !isCSITerminator(s[i]) {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isCSITerminator(c byte) bool {
	return c >= 0x40 && c <= 0x7E
}
