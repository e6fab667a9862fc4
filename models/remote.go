package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// RemoteID is the opaque record identifier assigned by the tracking API. The
// API sends it as a number; strings are accepted too.
type RemoteID string

func (id *RemoteID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("remote id: %w", err)
	}
	*id = RemoteID(n.String())
	return nil
}

// RemoteTime decodes the API's timestamps: epoch milliseconds, an ISO-8601
// string, or null.
type RemoteTime struct {
	Time  time.Time
	Valid bool
}

func (t *RemoteTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = RemoteTime{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("remote time %q: %w", s, err)
		}
		t.Time, t.Valid = parsed.UTC(), true
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("remote time %s: %w", b, err)
	}
	t.Time, t.Valid = time.UnixMilli(int64(ms)).UTC(), true
	return nil
}

func (t RemoteTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UnixMilli())
}

// Ptr returns the time, or nil when the value was null.
func (t RemoteTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// RemoteTracking is the record shape served by both the public lookup and the
// admin collection endpoints.
type RemoteTracking struct {
	ID                    RemoteID   `json:"id"`
	TrackingNumber        string     `json:"trackingNumber"`
	RecipientName         string     `json:"recipientName"`
	RecipientPhone        string     `json:"recipientPhone"`
	Origin                string     `json:"origin"`
	Destination           string     `json:"destination"`
	Status                string     `json:"status"`
	Service               string     `json:"service"`
	ShipDate              RemoteTime `json:"shipDate"`
	DeliveryDate          RemoteTime `json:"deliveryDate"`
	EstimatedDeliveryDate RemoteTime `json:"estimatedDeliveryDate"`
}

// ToShipment maps a remote record to the local model. The remote side keeps
// no history, so a single "Current status" update is synthesised at now. A
// missing ship date defaults to now and an unknown status to pending.
func (r RemoteTracking) ToShipment(now time.Time) Shipment {
	status, err := ParseStatus(r.Status)
	if err != nil {
		status = StatusPending
	}
	shipDate := now
	if r.ShipDate.Valid {
		shipDate = r.ShipDate.Time
	}
	return Shipment{
		ID:                string(r.ID),
		TrackingID:        NormalizeTrackingID(r.TrackingNumber),
		Recipient:         r.RecipientName,
		RecipientPhone:    r.RecipientPhone,
		Origin:            r.Origin,
		Destination:       r.Destination,
		Status:            status,
		Service:           r.Service,
		ShipDate:          shipDate,
		DeliveryDate:      r.DeliveryDate.Ptr(),
		EstimatedDelivery: r.EstimatedDeliveryDate.Ptr(),
		Updates:           []ShipmentUpdate{NewCurrentStatusUpdate(status, r.Destination, now)},
	}
}

// TrackingPayload is the request body for the admin create and update
// endpoints. Timestamps are sent as ISO-8601 strings.
type TrackingPayload struct {
	RecipientName         string         `json:"recipientName"`
	RecipientPhone        string         `json:"recipientPhone"`
	Origin                string         `json:"origin"`
	Destination           string         `json:"destination"`
	Status                ShipmentStatus `json:"status"`
	Service               string         `json:"service"`
	ShipDate              *time.Time     `json:"shipDate"`
	EstimatedDeliveryDate *time.Time     `json:"estimatedDeliveryDate"`
}

// PayloadFromDraft builds a request body from an admin form.
func PayloadFromDraft(d ShipmentDraft) TrackingPayload {
	return TrackingPayload{
		RecipientName:         d.Recipient,
		RecipientPhone:        d.RecipientPhone,
		Origin:                d.Origin,
		Destination:           d.Destination,
		Status:                d.Status,
		Service:               d.Service,
		ShipDate:              cloneTime(d.ShipDate),
		EstimatedDeliveryDate: cloneTime(d.EstimatedDelivery),
	}
}

// PayloadFromShipment re-sends the core fields of s with a new status.
func PayloadFromShipment(s Shipment, status ShipmentStatus) TrackingPayload {
	shipDate := s.ShipDate
	return TrackingPayload{
		RecipientName:         s.Recipient,
		RecipientPhone:        s.RecipientPhone,
		Origin:                s.Origin,
		Destination:           s.Destination,
		Status:                status,
		Service:               s.Service,
		ShipDate:              &shipDate,
		EstimatedDeliveryDate: cloneTime(s.EstimatedDelivery),
	}
}
