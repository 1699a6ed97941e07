// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the orb command line.
//
// The command tree is built with cobra. Every command shares the loaded
// configuration, a zap logger and the session scope resolved from
// --session, $ORB_SESSION or the parent process.
//
// # Commands
//
//   - orb: full screen chat interface (Bubble Tea)
//   - ask: one question, answer on stdout, --json for scripts
//   - chat: line mode conversation with prompt history
//   - history show|export|clear|sessions: the session conversation
//   - config show|get|set|path: configuration
//   - echo-server: local webhook for trying orb out
//   - version: build information
//
// # Usage
//
//	func main() {
//	    os.Exit(cli.Execute())
//	}
//
// # Exit Codes
//
// Execute maps errors to exit codes: 2 for usage errors, 3 for
// configuration problems, 4 when the webhook rejects the credentials, 5
// for other webhook failures, 8 for timeouts and 130 when a request was
// cancelled.
package cli
