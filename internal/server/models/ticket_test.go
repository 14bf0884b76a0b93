package models

import (
	"testing"
	"time"
)

func TestUploadTicket_Expired(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ticket := &UploadTicket{ExpiresAt: deadline}

	if ticket.Expired(deadline.Add(-time.Second)) {
		t.Fatal("ticket must be valid before the deadline")
	}
	if ticket.Expired(deadline) {
		t.Fatal("ticket must still be valid exactly at the deadline")
	}
	if !ticket.Expired(deadline.Add(time.Nanosecond)) {
		t.Fatal("ticket must be expired after the deadline")
	}
}
