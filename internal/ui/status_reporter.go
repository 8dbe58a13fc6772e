package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const (
	checkPassedLabelConstant   = "ok"
	checkFailedLabelConstant   = "fail"
	checkLineTemplateConstant  = "[%s] %s: %s\n"
	statusLineTemplateConstant = "%s\n"
)

// StatusReporter prints user-facing status lines, coloring them by outcome.
type StatusReporter struct {
	writer       io.Writer
	successColor *color.Color
	noticeColor  *color.Color
	failureColor *color.Color
}

// NewStatusReporter constructs a StatusReporter writing to writer.
// Colors are suppressed when colorEnabled is false or the terminal does not support them.
func NewStatusReporter(writer io.Writer, colorEnabled bool) *StatusReporter {
	if writer == nil {
		writer = io.Discard
	}
	reporter := &StatusReporter{
		writer:       writer,
		successColor: color.New(color.FgGreen),
		noticeColor:  color.New(color.FgYellow),
		failureColor: color.New(color.FgRed, color.Bold),
	}
	if !colorEnabled {
		reporter.successColor.DisableColor()
		reporter.noticeColor.DisableColor()
		reporter.failureColor.DisableColor()
	}
	return reporter
}

// Success prints a line describing a completed change.
func (reporter *StatusReporter) Success(message string) {
	reporter.successColor.Fprintf(reporter.writer, statusLineTemplateConstant, message)
}

// Notice prints a line describing a run that completed without changes.
func (reporter *StatusReporter) Notice(message string) {
	reporter.noticeColor.Fprintf(reporter.writer, statusLineTemplateConstant, message)
}

// Check prints the result of a single diagnostic check.
func (reporter *StatusReporter) Check(name string, passed bool, detail string) {
	if passed {
		fmt.Fprintf(reporter.writer, checkLineTemplateConstant, reporter.successColor.Sprint(checkPassedLabelConstant), name, detail)
		return
	}
	fmt.Fprintf(reporter.writer, checkLineTemplateConstant, reporter.failureColor.Sprint(checkFailedLabelConstant), name, detail)
}
