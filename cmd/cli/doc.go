// Package cli constructs the gitidentity command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. Running the root command applies the matching lookup identity
// to the current repository; the lookup and doctor subcommands maintain and
// verify the setup.
package cli
