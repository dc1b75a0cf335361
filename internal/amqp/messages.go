package amqp

import (
	"encoding/json"
	"time"

	"dataentry/internal/core"
)

// EntrySubmittedMessage announces a submission that passed validation. The
// entry is carried by value since nothing is stored server side.
type EntrySubmittedMessage struct {
	SessionID   string    `json:"session_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	ItemName    string    `json:"itemName"`
	Quantity    string    `json:"quantity,omitempty"`
	TotalPrice  string    `json:"totalPrice,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEntrySubmittedMessage snapshots e using the same date/time formats as the results query.
func NewEntrySubmittedMessage(sessionID string, e core.FormEntry) *EntrySubmittedMessage {
	return &EntrySubmittedMessage{
		SessionID:   sessionID,
		Date:        e.ISODate(),
		Time:        e.Clock(),
		Category:    e.Category,
		SubCategory: e.SubCategory,
		ItemName:    e.ItemName,
		Quantity:    e.Quantity,
		TotalPrice:  e.TotalPrice,
		Comments:    e.Comments,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySubmittedMessageFromJSON creates a message from JSON bytes
func EntrySubmittedMessageFromJSON(data []byte) (*EntrySubmittedMessage, error) {
	var msg EntrySubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
