package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI provides colored terminal output and respects verbose mode.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix        = color.New(color.FgHiBlue).Sprint("i")
	successPrefix     = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix     = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix       = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix     = color.New(color.FgHiBlue).Sprint("  →")
	interviewerPrefix = color.New(color.FgHiCyan, color.Bold).Sprint("Interviewer:")
	cyan              = color.New(color.FgHiCyan).SprintFunc()
	green             = color.New(color.FgHiGreen).SprintFunc()
	yellow            = color.New(color.FgHiYellow).SprintFunc()
	red               = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor returns the string colored by session status.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "active":
		return green(status)
	case "completed":
		return cyan(status)
	case "expired":
		return red(status)
	default:
		return status
	}
}

// VerdictColor returns the string colored by answer verdict.
func VerdictColor(verdict string) string {
	switch strings.ToLower(verdict) {
	case "correct":
		return green(verdict)
	case "partial":
		return yellow(verdict)
	case "incorrect", "skipped":
		return red(verdict)
	default:
		return verdict
	}
}

// RateColor returns the success rate colored by the same buckets the
// final summary uses.
func RateColor(rate float64) string {
	s := fmt.Sprintf("%.0f%%", rate)
	switch {
	case rate >= 80:
		return green(s)
	case rate >= 60:
		return yellow(s)
	default:
		return red(s)
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Interviewer prints a message from the interviewer, prefixed and
// followed by a blank line so question blocks stay readable.
func (u *UI) Interviewer(text string) {
	fmt.Fprintf(u.Out, "%s\n%s\n\n", interviewerPrefix, text)
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
