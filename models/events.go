package models

import "time"

// Shipment event types published after successful admin mutations.
const (
	EventShipmentCreated = "shipment_created"
	EventShipmentEdited  = "shipment_edited"
	EventShipmentUpdated = "shipment_updated"
	EventShipmentDeleted = "shipment_deleted"
)

// ShipmentEvent is published to SNS when an admin mutation succeeds.
type ShipmentEvent struct {
	EventType   string         `json:"event_type"`
	TrackingID  string         `json:"tracking_id"`
	ShipmentID  string         `json:"shipment_id,omitempty"`
	Status      ShipmentStatus `json:"status,omitempty"`
	Description string         `json:"description,omitempty"`
	Actor       string         `json:"actor,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
