// Package ticketcode generates the opaque codes printed into ticket QR
// images. A code embeds the event, the holder and a per-purchase nonce,
// so codes are unique and cannot be guessed from event data alone.
package ticketcode

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Payload struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
	Nonce    string    `json:"nonce"`
}

// New returns an opaque validation code for one ticket.
func New(eventID, userID string, issuedAt time.Time) string {
	p := Payload{
		EventID:  eventID,
		UserID:   userID,
		IssuedAt: issuedAt.UTC(),
		Nonce:    uuid.NewString(),
	}
	raw, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a code back into its payload. Scanners only need the
// opaque string; decoding exists for diagnostics and tests.
func Decode(code string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return Payload{}, fmt.Errorf("decode ticket code: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("parse ticket code: %w", err)
	}
	return p, nil
}
