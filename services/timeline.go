package services

import (
	"sort"
	"time"

	"github.com/safepack/tracking-service/models"
)

// Display layouts for timestamps and dates.
const (
	TimestampLayout = "Jan 2, 2006, 3:04 PM"
	DateLayout      = "Jan 2, 2006"
)

// TimelineEntry is one row of a shipment's rendered history.
type TimelineEntry struct {
	Status      models.ShipmentStatus `json:"status"`
	Label       string                `json:"label"`
	Description string                `json:"description"`
	Location    string                `json:"location,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
	When        string                `json:"when"`
	// Current marks the most recent entry.
	Current bool `json:"current"`
}

// ShipmentView is a shipment with its display-ready fields.
type ShipmentView struct {
	models.Shipment
	StatusLabel           string          `json:"statusLabel"`
	ShipDateText          string          `json:"shipDateText"`
	EstimatedDeliveryText string          `json:"estimatedDeliveryText,omitempty"`
	DeliveryDateText      string          `json:"deliveryDateText,omitempty"`
	Timeline              []TimelineEntry `json:"timeline"`
}

// SortUpdates returns the updates newest first. Entries with equal
// timestamps keep their relative order.
func SortUpdates(updates []models.ShipmentUpdate) []models.ShipmentUpdate {
	out := make([]models.ShipmentUpdate, len(updates))
	copy(out, updates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// BuildTimeline renders updates newest first, formatted in loc.
func BuildTimeline(updates []models.ShipmentUpdate, loc *time.Location) []TimelineEntry {
	if loc == nil {
		loc = time.UTC
	}
	sorted := SortUpdates(updates)
	entries := make([]TimelineEntry, 0, len(sorted))
	for i, u := range sorted {
		entries = append(entries, TimelineEntry{
			Status:      u.Status,
			Label:       u.Status.Label(),
			Description: u.Description,
			Location:    u.Location,
			Notes:       u.Notes,
			Timestamp:   u.Timestamp,
			When:        u.Timestamp.In(loc).Format(TimestampLayout),
			Current:     i == 0,
		})
	}
	return entries
}

func NewShipmentView(s models.Shipment, loc *time.Location) ShipmentView {
	if loc == nil {
		loc = time.UTC
	}
	v := ShipmentView{
		Shipment:     s,
		StatusLabel:  s.Status.Label(),
		ShipDateText: s.ShipDate.In(loc).Format(DateLayout),
		Timeline:     BuildTimeline(s.Updates, loc),
	}
	if s.EstimatedDelivery != nil {
		v.EstimatedDeliveryText = s.EstimatedDelivery.In(loc).Format(DateLayout)
	}
	if s.DeliveryDate != nil {
		v.DeliveryDateText = s.DeliveryDate.In(loc).Format(DateLayout)
	}
	return v
}
