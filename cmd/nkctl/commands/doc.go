// Package commands defines the nkctl CLI, which edits the locally stored
// calculation without the HTTP server.
//
// # Commands
//
//   - show           Print a summary of the calculation
//   - export         Print the calculation as JSON
//   - import FILE    Replace the supplied entities from a JSON file
//   - validate       Check the calculation against the schema
//   - check          validate, then report plausibility warnings
//   - reset          Restore the default calculation
//   - item add       Append a cost item
//   - item set ID    Change a cost item
//   - item remove ID Remove a cost item
//
// # Implementation
//
// The root command opens the file store under --home and rehydrates the
// calculation before any subcommand runs. Writes are synchronous, so every
// command leaves the snapshot on disk when it returns.
package commands
