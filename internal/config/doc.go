// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for orb.
//
// Supports TOML, JSON and YAML configuration formats, with sensible
// defaults, environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - WebhookConfig: Endpoint, credentials and timeout
//   - SessionConfig: Where the session-scoped history lives and for how long
//   - UIConfig: Theme and animation settings
//   - LogConfig: Log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ORB_*)
//   - ~/.orb/config.toml
//   - ~/.orb/config.json
//   - ~/.orb/config.yaml
//   - Built-in defaults
//
// The directory can be moved with ORB_HOME.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.Webhook.Timeout()
package config
