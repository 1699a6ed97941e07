// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"encoding/json"
	"strings"
	"time"
)

// Exchange is one request/response pair. Exchanges are immutable once built.
type Exchange struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the Unix epoch
}

// NewExchange builds an exchange stamped with at.
func NewExchange(id, query, response string, at time.Time) Exchange {
	return Exchange{
		ID:        id,
		Query:     query,
		Response:  response,
		Timestamp: at.UnixMilli(),
	}
}

// CreatedAt returns the timestamp as a time.Time.
func (e Exchange) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// validate checks the invariants every stored exchange must satisfy.
func (e Exchange) validate() error {
	switch {
	case e.ID == "":
		return &InvalidExchangeError{Field: "id", Reason: "must not be empty"}
	case strings.TrimSpace(e.Query) == "":
		return &InvalidExchangeError{Field: "query", Reason: "must not be empty"}
	case strings.TrimSpace(e.Response) == "":
		return &InvalidExchangeError{Field: "response", Reason: "must not be empty"}
	}
	return nil
}

// Marshal serializes exchanges in the slot format.
func Marshal(exchanges []Exchange) ([]byte, error) {
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	return json.Marshal(exchanges)
}

// Unmarshal parses the slot format. A JSON null decodes to an empty list.
func Unmarshal(data []byte) ([]Exchange, error) {
	var exchanges []Exchange
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return nil, err
	}
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	return exchanges, nil
}
