package services

import (
	"time"

	"petstore/internal/models"
)

// Event types published after a committed change.
const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeactivated = "product.deactivated"
	EventProductSold        = "product.sold"
	EventProductRestocked   = "product.restocked"
)

// EventPublisher sends an encoded event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent is the message body of every product event.
type ProductEvent struct {
	Type       string         `json:"type"`
	Product    models.Product `json:"product"`
	Quantity   int            `json:"quantity,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
