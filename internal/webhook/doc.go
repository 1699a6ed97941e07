// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package webhook provides the HTTP client for the answer webhook.
//
// Every query is a single POST of {"query": "..."} with HTTP Basic
// credentials. The response body is returned as a jsonvalue.Value for the
// extractor to interpret; no schema is assumed.
//
// # Errors
//
// All failures are *ClientError values with a Type:
//
//	ErrTypeStatus          non-2xx response ("Server error: 500")
//	ErrTypeTimeout         request exceeded its deadline
//	ErrTypeCanceled        request aborted by the caller
//	ErrTypeConnection      transport failure
//	ErrTypeInvalidResponse body was not JSON or too large
//	ErrTypeRateLimited     local rate limit reached
//	ErrTypeNotConfigured   no webhook URL
//
// There is no retry; callers decide what to do with a failure.
package webhook
