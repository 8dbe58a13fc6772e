// Package pathutils resolves the user-supplied paths gitidentity reads and
// writes: the lookup table, the SSH client configuration and account
// directories. A leading ~ expands to the home directory, and relative paths
// are anchored to the process working directory rather than the repository root.
package pathutils
