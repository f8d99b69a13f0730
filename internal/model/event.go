package model

import "time"

// TopicNotificationRequested is the topic intake publishes to and the worker consumes from.
const TopicNotificationRequested = "notification.requested"

// NotificationRequested is the immutable snapshot published once per intake call.
// It may be delivered more than once.
type NotificationRequested struct {
	NotificationID string    `json:"notification_id"`
	Recipient      string    `json:"recipient"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Channel        Channel   `json:"channel"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewNotificationRequested builds the event for a freshly persisted notification.
func NewNotificationRequested(n *Notification, at time.Time) NotificationRequested {
	return NotificationRequested{
		NotificationID: n.ID,
		Recipient:      n.Recipient,
		Subject:        n.Subject,
		Body:           n.Body,
		Channel:        n.Channel,
		Timestamp:      at,
	}
}
