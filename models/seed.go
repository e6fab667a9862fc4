package models

import "time"

// DemoShipments returns the sample records loaded when SEED_DEMO_DATA is set.
// Updates are newest first.
func DemoShipments() []Shipment {
	return []Shipment{
		{
			TrackingID:        "SWIFT1234567",
			Recipient:         "John Smith",
			Origin:            "New York, NY",
			Destination:       "Los Angeles, CA",
			Status:            StatusInTransit,
			Service:           "Express Delivery",
			ShipDate:          ts("2025-01-10T08:00:00Z"),
			EstimatedDelivery: tsPtr("2025-01-13T17:00:00Z"),
			Updates: []ShipmentUpdate{
				{Timestamp: ts("2025-01-12T14:20:00Z"), Status: StatusInTransit, Description: "Package in transit to delivery facility", Location: "Denver, CO", Notes: "On schedule for delivery tomorrow"},
				{Timestamp: ts("2025-01-11T19:45:00Z"), Status: StatusInTransit, Description: "Package departed from sorting center", Location: "Chicago, IL"},
				{Timestamp: ts("2025-01-11T12:30:00Z"), Status: StatusProcessing, Description: "Package arrived at sorting center", Location: "Chicago, IL"},
				{Timestamp: ts("2025-01-10T14:15:00Z"), Status: StatusProcessing, Description: "Package processed at origin facility", Location: "New York, NY"},
				{Timestamp: ts("2025-01-10T08:00:00Z"), Status: StatusPending, Description: LabelCreatedDescription, Location: "New York, NY"},
			},
		},
		{
			TrackingID:        "SWIFT9876543",
			Recipient:         "Alice Johnson",
			Origin:            "Seattle, WA",
			Destination:       "Miami, FL",
			Status:            StatusDelivered,
			Service:           "Standard Shipping",
			ShipDate:          ts("2025-01-05T10:30:00Z"),
			DeliveryDate:      tsPtr("2025-01-12T14:20:00Z"),
			EstimatedDelivery: tsPtr("2025-01-12T17:00:00Z"),
			Updates: []ShipmentUpdate{
				{Timestamp: ts("2025-01-12T14:20:00Z"), Status: StatusDelivered, Description: "Package delivered", Location: "Miami, FL", Notes: "Signed by: A. Johnson"},
				{Timestamp: ts("2025-01-12T09:30:00Z"), Status: StatusInTransit, Description: "Out for delivery", Location: "Miami, FL"},
				{Timestamp: ts("2025-01-11T18:45:00Z"), Status: StatusInTransit, Description: "Package arrived at destination facility", Location: "Miami, FL"},
				{Timestamp: ts("2025-01-09T11:20:00Z"), Status: StatusInTransit, Description: "Package in transit", Location: "Atlanta, GA"},
				{Timestamp: ts("2025-01-06T15:30:00Z"), Status: StatusProcessing, Description: "Package departed from origin facility", Location: "Seattle, WA"},
				{Timestamp: ts("2025-01-05T10:30:00Z"), Status: StatusPending, Description: LabelCreatedDescription, Location: "Seattle, WA"},
			},
		},
		{
			TrackingID:        "SWIFT4567890",
			Recipient:         "Robert Chen",
			Origin:            "San Francisco, CA",
			Destination:       "Boston, MA",
			Status:            StatusProcessing,
			Service:           "Priority Overnight",
			ShipDate:          ts("2025-01-12T16:45:00Z"),
			EstimatedDelivery: tsPtr("2025-01-13T12:00:00Z"),
			Updates: []ShipmentUpdate{
				{Timestamp: ts("2025-01-12T18:20:00Z"), Status: StatusProcessing, Description: "Package processed at origin facility", Location: "San Francisco, CA"},
				{Timestamp: ts("2025-01-12T16:45:00Z"), Status: StatusPending, Description: LabelCreatedDescription, Location: "San Francisco, CA"},
			},
		},
		{
			TrackingID:        "SWIFT7654321",
			Recipient:         "Maria Garcia",
			Origin:            "Austin, TX",
			Destination:       "Chicago, IL",
			Status:            StatusPending,
			Service:           "Ground Shipping",
			ShipDate:          ts("2025-01-12T14:20:00Z"),
			EstimatedDelivery: tsPtr("2025-01-18T17:00:00Z"),
			Updates: []ShipmentUpdate{
				{Timestamp: ts("2025-01-12T14:20:00Z"), Status: StatusPending, Description: LabelCreatedDescription, Location: "Austin, TX"},
			},
		},
	}
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}
