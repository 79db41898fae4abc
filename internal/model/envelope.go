package model

import "encoding/json"

// Envelope is the wire shape every portal endpoint responds with. Success
// must be checked before Data is decoded.
type Envelope struct {
	Timestamp    int64           `json:"timestamp"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"errorMessage"`
	Data         json.RawMessage `json:"data"`
}
