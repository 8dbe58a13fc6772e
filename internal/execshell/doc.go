// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and optional lifecycle
// observers, OSCommandRunner runs processes through os/exec without a shell, and
// the typed errors let callers tell a non-zero exit apart from a process that
// never ran. gitidentity uses it for whoami and git.
package execshell
