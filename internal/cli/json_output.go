// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripted use of the commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONResponse is the envelope every --json command writes.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response. data may carry
// partial results.
func NewJSONErrorResponse(command string, err error, data interface{}) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      data,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OutputJSON runs handler and prints its result in the envelope. A handler
// error is printed as a JSON error document and returned as an ExitError.
func OutputJSON(w io.Writer, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if err != nil {
		if perr := NewJSONErrorResponse(command, err, data).Print(w); perr != nil {
			return perr
		}
		return &ExitError{Code: ExitCode(err), Err: err}
	}
	return NewJSONResponse(command, data).Print(w)
}
