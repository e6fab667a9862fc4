package models

import (
	"fmt"
	"strings"
	"time"
)

// ShipmentStatus is the lifecycle stage of a shipment. The stages are totally
// ordered: pending < processing < in_transit < delivered.
type ShipmentStatus string

// ShipmentStatus constants.
const (
	StatusPending    ShipmentStatus = "pending"
	StatusProcessing ShipmentStatus = "processing"
	StatusInTransit  ShipmentStatus = "in_transit"
	StatusDelivered  ShipmentStatus = "delivered"
)

var statusRank = map[ShipmentStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusInTransit:  2,
	StatusDelivered:  3,
}

var statusLabels = map[ShipmentStatus]string{
	StatusPending:    "Pending",
	StatusProcessing: "Processing",
	StatusInTransit:  "In Transit",
	StatusDelivered:  "Delivered",
}

// ParseStatus normalises s and reports whether it names a known status.
func ParseStatus(s string) (ShipmentStatus, error) {
	st := ShipmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown shipment status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the four lifecycle stages.
func (s ShipmentStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position of s in the lifecycle, or -1 for unknown values.
func (s ShipmentStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Before reports whether s comes strictly earlier in the lifecycle than o.
func (s ShipmentStatus) Before(o ShipmentStatus) bool {
	return s.Rank() < o.Rank()
}

// Label is the human-readable badge text; unknown values render as Pending.
func (s ShipmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusPending]
}

// ShipmentUpdate is a single timestamped lifecycle event.
type ShipmentUpdate struct {
	Timestamp   time.Time      `json:"timestamp"`
	Status      ShipmentStatus `json:"status"`
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// Shipment is the session-local view of a tracking record. Updates are kept
// newest first.
type Shipment struct {
	ID                string           `json:"id"`
	TrackingID        string           `json:"trackingId"`
	Recipient         string           `json:"recipient"`
	RecipientPhone    string           `json:"recipientPhone"`
	Origin            string           `json:"origin"`
	Destination       string           `json:"destination"`
	Status            ShipmentStatus   `json:"status"`
	Service           string           `json:"service"`
	ShipDate          time.Time        `json:"shipDate"`
	DeliveryDate      *time.Time       `json:"deliveryDate"`
	EstimatedDelivery *time.Time       `json:"estimatedDelivery"`
	Updates           []ShipmentUpdate `json:"updates"`
}

// Clone returns a deep copy so callers never share the update slice or the
// optional timestamps with the store.
func (s Shipment) Clone() Shipment {
	c := s
	c.DeliveryDate = cloneTime(s.DeliveryDate)
	c.EstimatedDelivery = cloneTime(s.EstimatedDelivery)
	if s.Updates != nil {
		c.Updates = make([]ShipmentUpdate, len(s.Updates))
		copy(c.Updates, s.Updates)
	}
	return c
}

// LatestUpdate returns the most recent update, if any.
func (s Shipment) LatestUpdate() (ShipmentUpdate, bool) {
	if len(s.Updates) == 0 {
		return ShipmentUpdate{}, false
	}
	return s.Updates[0], true
}

// Consistent reports whether Status matches the most recent update. A
// shipment without updates is never consistent.
func (s Shipment) Consistent() bool {
	latest, ok := s.LatestUpdate()
	return ok && latest.Status == s.Status
}

// NormalizeTrackingID trims and uppercases a tracking identifier.
func NormalizeTrackingID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// LabelCreatedDescription is the text of the update synthesised on creation.
const LabelCreatedDescription = "Shipping label created"

// NewLabelCreatedUpdate is the initial event every newly created shipment
// carries.
func NewLabelCreatedUpdate(origin string, at time.Time) ShipmentUpdate {
	return ShipmentUpdate{
		Timestamp:   at,
		Status:      StatusPending,
		Description: LabelCreatedDescription,
		Location:    origin,
	}
}

// NewCurrentStatusUpdate stands in for history on records fetched from the
// remote API, which only stores the current status.
func NewCurrentStatusUpdate(status ShipmentStatus, location string, at time.Time) ShipmentUpdate {
	return ShipmentUpdate{
		Timestamp:   at,
		Status:      status,
		Description: "Current status: " + string(status),
		Location:    location,
	}
}

// ShipmentDraft is the admin form for creating or editing a shipment.
type ShipmentDraft struct {
	Recipient         string         `json:"recipient" validate:"required"`
	RecipientPhone    string         `json:"recipientPhone" validate:"required"`
	Origin            string         `json:"origin" validate:"required"`
	Destination       string         `json:"destination" validate:"required"`
	Service           string         `json:"service" validate:"required"`
	Status            ShipmentStatus `json:"status" validate:"omitempty,oneof=pending processing in_transit delivered"`
	ShipDate          *time.Time     `json:"shipDate"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery"`
}

// Normalize trims free-text fields so whitespace-only input counts as empty.
func (d ShipmentDraft) Normalize() ShipmentDraft {
	d.Recipient = strings.TrimSpace(d.Recipient)
	d.RecipientPhone = strings.TrimSpace(d.RecipientPhone)
	d.Origin = strings.TrimSpace(d.Origin)
	d.Destination = strings.TrimSpace(d.Destination)
	d.Service = strings.TrimSpace(d.Service)
	d.Status = ShipmentStatus(strings.ToLower(strings.TrimSpace(string(d.Status))))
	return d
}

// UpdateDraft is the admin form for appending a status update.
type UpdateDraft struct {
	Status      ShipmentStatus `json:"status" validate:"omitempty,oneof=pending processing in_transit delivered"`
	Description string         `json:"description" validate:"required"`
	Location    string         `json:"location"`
	Notes       string         `json:"notes"`
}

// Normalize trims free-text fields.
func (d UpdateDraft) Normalize() UpdateDraft {
	d.Status = ShipmentStatus(strings.ToLower(strings.TrimSpace(string(d.Status))))
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// ToUpdate stamps the draft as an update that occurred at t.
func (d UpdateDraft) ToUpdate(t time.Time) ShipmentUpdate {
	return ShipmentUpdate{
		Timestamp:   t,
		Status:      d.Status,
		Description: d.Description,
		Location:    d.Location,
		Notes:       d.Notes,
	}
}

// ShipmentPatch carries the mutable fields of a shipment; nil fields are left
// untouched. ID and TrackingID are immutable and deliberately absent.
type ShipmentPatch struct {
	Recipient         *string
	RecipientPhone    *string
	Origin            *string
	Destination       *string
	Service           *string
	Status            *ShipmentStatus
	ShipDate          *time.Time
	DeliveryDate      *time.Time
	EstimatedDelivery *time.Time
}

// Apply merges the patch into s and returns the result.
func (p ShipmentPatch) Apply(s Shipment) Shipment {
	out := s.Clone()
	if p.Recipient != nil {
		out.Recipient = *p.Recipient
	}
	if p.RecipientPhone != nil {
		out.RecipientPhone = *p.RecipientPhone
	}
	if p.Origin != nil {
		out.Origin = *p.Origin
	}
	if p.Destination != nil {
		out.Destination = *p.Destination
	}
	if p.Service != nil {
		out.Service = *p.Service
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.ShipDate != nil {
		out.ShipDate = *p.ShipDate
	}
	if p.DeliveryDate != nil {
		out.DeliveryDate = cloneTime(p.DeliveryDate)
	}
	if p.EstimatedDelivery != nil {
		out.EstimatedDelivery = cloneTime(p.EstimatedDelivery)
	}
	return out
}

// PatchFromShipment builds a patch that overwrites every mutable field with
// the values of s.
func PatchFromShipment(s Shipment) ShipmentPatch {
	status := s.Status
	shipDate := s.ShipDate
	return ShipmentPatch{
		Recipient:         &s.Recipient,
		RecipientPhone:    &s.RecipientPhone,
		Origin:            &s.Origin,
		Destination:       &s.Destination,
		Service:           &s.Service,
		Status:            &status,
		ShipDate:          &shipDate,
		DeliveryDate:      cloneTime(s.DeliveryDate),
		EstimatedDelivery: cloneTime(s.EstimatedDelivery),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
