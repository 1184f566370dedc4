package models

import (
	"encoding/json"
	"time"
)

// Document is a stored content record. Data holds the JSON encoding of the
// entity; Order mirrors its "order" field so stores can sort without
// decoding.
type Document struct {
	UpdatedAt  time.Time       `json:"updated_at"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
	Order      int             `json:"order"`
}
