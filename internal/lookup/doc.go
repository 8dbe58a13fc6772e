// Package lookup loads and maintains the ordered table that maps directory
// prefixes under a user's home to commit identities.
//
// Tables are stored as JSON, YAML, or TOML documents; the format follows the
// file extension. Entry order is significant: the first entry whose prefix
// begins the working tree root wins.
package lookup
