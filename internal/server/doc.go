// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a local stand-in for the answer webhook.
//
// It accepts the same POST {"query": "..."} the client sends and replies in
// one of several payload shapes, so every extraction rule can be tried
// without a real endpoint.
//
// # Endpoints
//
//   - POST /webhook - answer a query
//   - GET  /health  - health check
//
// # Reply Shapes
//
// The shape comes from the ?shape= query parameter, the X-Orb-Shape header,
// or Config.Shape, in that order:
//
//	output    {"output": "..."}
//	response  {"response": "..."}
//	answer    {"answer": "..."}
//	nested    {"data": {"result": {"output": "..."}}}
//	string    "..."
//	raw       {"echo": "...", "length": n}
//	markdown  {"output": "| a | b |..."}
//	empty     {"output": "  "} (blank answer)
//	error     HTTP 500
//
// # Usage
//
//	ln, err := net.Listen("tcp", server.DefaultAddr)
//	srv := server.New(server.Config{Username: "orb", Password: "pw"}, logger)
//	go srv.Serve(ln)
//	defer srv.Shutdown(ctx)
package server
