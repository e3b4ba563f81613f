package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
	// OpExport asks the worker to re-export a project without a record change.
	OpExport = "export"
)

// RecordChangedMessage announces a write to a record collection. It carries
// identifiers only; consumers reload current state from the store.
type RecordChangedMessage struct {
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	ID         string    `json:"id,omitempty"`
	ProjectID  string    `json:"projectId,omitempty"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordChangedMessage stamps the message with the current time; the
// version is the timestamp in nanoseconds so later writes compare greater.
func NewRecordChangedMessage(collection, operation, id, projectID string) *RecordChangedMessage {
	now := time.Now()
	return &RecordChangedMessage{
		Collection: collection,
		Operation:  operation,
		ID:         id,
		ProjectID:  projectID,
		Version:    now.UnixNano(),
		Timestamp:  now,
	}
}

// NewExportRequest asks for a project export.
func NewExportRequest(projectID string) *RecordChangedMessage {
	return NewRecordChangedMessage("projects", OpExport, projectID, projectID)
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON creates a message from JSON bytes
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Collection == "" || msg.Operation == "" {
		return nil, errors.New("message missing collection or operation")
	}
	return &msg, nil
}
