// Package cli provides the bookvault command-line interface.
//
// It wires configuration, the encrypted store, and the catalog service into
// cobra commands. Typical flow: prompt for the passphrase, open the catalog,
// verify its integrity, and either run a single subcommand or drop into an
// interactive session that dispatches catalog commands until the user quits.
//
// Key features:
//   - Interactive session with add / list / edit / read / delete / info / check
//   - One-shot subcommands for the same operations, plus export and version
//   - Advisory warning when another process writes the open catalog file
//
// The interactive session is started by running bookvault without a
// subcommand. See App, runREPL, and NewRootCommand for details.
package cli
