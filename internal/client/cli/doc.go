// Package cli provides the interactive hobbytracker command-line client.
//
// It wires configuration and the HTTP API client into a small REPL:
//   - register: prompt for username, email and password and create a user
//   - user <id>: show a registered user
//   - ping: check that the server and its database are up
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
