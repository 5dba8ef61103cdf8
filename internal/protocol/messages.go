package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientMessage  MessageType = "client_message"
	TypeAssistantReply MessageType = "assistant_reply"
	TypeMessageDropped MessageType = "message_dropped"
	TypeErrorEvent     MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientMessage is one inbound user utterance.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	UserID int64       `json:"user_id"`
	ChatID int64       `json:"chat_id,omitempty"`
	Sender string      `json:"sender,omitempty"`
	Text   string      `json:"text"`
}

// AssistantReply carries the generated answer back to the client.
type AssistantReply struct {
	Type   MessageType `json:"type"`
	UserID int64       `json:"user_id"`
	ChatID int64       `json:"chat_id,omitempty"`
	Text   string      `json:"text"`
}

// MessageDropped signals that an inbound message was silently discarded.
type MessageDropped struct {
	Type   MessageType `json:"type"`
	UserID int64       `json:"user_id"`
	Reason string      `json:"reason"`
}

type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail"`
}

// ParseClientMessage decodes and validates one inbound websocket frame.
func ParseClientMessage(raw []byte) (ClientMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("invalid envelope: %w", err)
	}
	if env.Type != TypeClientMessage {
		return ClientMessage{}, ErrUnsupportedType
	}

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ClientMessage{}, err
	}
	if msg.UserID == 0 {
		return ClientMessage{}, errors.New("client_message requires user_id")
	}
	if msg.Text == "" {
		return ClientMessage{}, errors.New("client_message requires text")
	}
	return msg, nil
}
