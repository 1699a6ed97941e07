// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea model for the orb terminal UI.

The landing screen shows the particle field, the large sphere and the
"Ask Me Anything" title above the input. Once a query is sent the sphere
shrinks into a header and the conversation scrolls in a viewport: each
query in a bubble on the right, each answer rendered as markdown in a
bubble on the left.

# Request Flow

Enter hands the input to dispatch.Dispatcher.Accept. An accepted request
runs in a tea.Cmd and comes back as a DispatchDoneMsg; while it runs the
status line shows a spinner and "Thinking...". Errors stay on the status
line, in rose, until the next submission or Esc.

# Keys

	Enter      send the query
	Esc        cancel the request in flight, or dismiss the error
	PgUp/PgDn  scroll the conversation
	Ctrl+C     quit

# Live Reload

	w, _ := config.Watch(ctx, path, config.DefaultDebounce, chat.NotifyReload(p.Send))

A ConfigReloadedMsg reconfigures the webhook client, the empty answer
policy, the theme and the animation.
*/
package chat
