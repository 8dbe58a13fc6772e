// Package identity applies a commit identity to the current working tree.
//
// The Service resolves the invoking user and the working tree root, consults
// the lookup table, and writes user.email (and optionally user.name) into the
// repository's local configuration when an entry matches. Each step is backed
// by a small interface so the git executable and go-git backends can be
// swapped through configuration.
package identity
