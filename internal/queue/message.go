// Package queue carries report jobs from the API to the worker.
package queue

import (
	"context"
	"encoding/json"
)

// Client enqueues report jobs. A nil client means reports process inline.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the payload sent to the report worker.
type Message struct {
	ReportID   string `json:"reportId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
