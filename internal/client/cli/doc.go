// Package cli provides the interactive support portal command-line client.
//
// It wires configuration, local storage, the session manager, the remote
// user-directory client and the services into a REPL. On start the session
// gate picks the view: with a stored, unexpired token the operator lands in
// user management right away, otherwise a login prompt is shown.
//
// Key features:
//   - Login / Logout
//   - List, refresh and search the user directory
//   - Add, edit and delete users; edit your own profile
//   - Reset a user's password
//   - Upload a new profile image with progress reporting
//
// Every management command is gated; see runREPL for the command list.
package cli
