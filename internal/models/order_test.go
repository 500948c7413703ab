package models

import "testing"

func TestOrderStatusProjection(t *testing.T) {
	order := &Order{
		Details: []OrderDetail{
			{ShipmentID: 7, Status: ShipmentShipping},
		},
	}
	if order.Status() != ShipmentShipping {
		t.Fatalf("status want shipping got %s", order.Status().String())
	}
	if order.ShipmentID() != 7 {
		t.Fatalf("shipment id want 7 got %d", order.ShipmentID())
	}

	empty := &Order{}
	if empty.Status() != "" {
		t.Fatalf("order without details should project empty status, got %s", empty.Status().String())
	}
	if empty.ShipmentID() != 0 {
		t.Fatalf("order without details should have no shipment id")
	}
}

func TestOrderIsGuest(t *testing.T) {
	guest := &Order{UserID: 0}
	if !guest.IsGuest() {
		t.Fatalf("user id 0 should be a guest order")
	}
	member := &Order{UserID: 3}
	if member.IsGuest() {
		t.Fatalf("user id 3 should not be a guest order")
	}
}

func TestShipmentStatusValid(t *testing.T) {
	for _, status := range []ShipmentStatus{
		ShipmentPending, ShipmentShipping, ShipmentShipped,
		ShipmentCanceled, ShipmentRefundRequested, ShipmentRefundResolved,
	} {
		if !status.Valid() {
			t.Fatalf("%s should be valid", status.String())
		}
	}
	if ShipmentStatus("delivering").Valid() {
		t.Fatalf("unknown status should be invalid")
	}
}

func TestShipmentStatusTerminal(t *testing.T) {
	if !ShipmentCanceled.Terminal() || !ShipmentRefundResolved.Terminal() {
		t.Fatalf("canceled and refund_resolved are terminal")
	}
	if ShipmentShipped.Terminal() {
		t.Fatalf("shipped still accepts refund requests, not terminal")
	}
}
