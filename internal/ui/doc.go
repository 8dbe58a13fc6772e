// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger mirrors shell command lifecycle events to a
// console logger, while StatusReporter prints the short status lines users
// read after each run. Detailed telemetry continues to flow through the
// structured loggers.
package ui
