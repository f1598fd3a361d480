package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind 通知類型
type NotificationKind string

const (
	NotificationJoinRequested   NotificationKind = "join_requested"
	NotificationRequestAccepted NotificationKind = "request_accepted"
	NotificationRequestDeclined NotificationKind = "request_declined"
	NotificationParticipantLeft NotificationKind = "participant_left"
)

// Notification is addressed to UserID about something ActorID did on an event.
type Notification struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	UserID     uuid.UUID        `json:"user_id" db:"user_id"`
	Kind       NotificationKind `json:"kind" db:"kind"`
	EventID    uuid.UUID        `json:"event_id" db:"event_id"`
	EventTitle string           `json:"event_title" db:"event_title"`
	ActorID    uuid.UUID        `json:"actor_id" db:"actor_id"`
	ReadAt     *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
