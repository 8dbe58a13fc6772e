// Package gitrepo reads and updates Git repositories in-process through go-git.
//
// GoGitRepository locates the working tree that contains a directory and
// writes keys into that repository's local configuration without invoking
// the git executable.
package gitrepo
