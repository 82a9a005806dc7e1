package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestIsTerminalNegotiationStatus(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{NegotiationStatusOpen, false},
		{NegotiationStatusAccepted, true},
		{NegotiationStatusRejected, true},
		{NegotiationStatusCanceled, true},
		{"", false},
		{"pending", false},
	}

	for _, tt := range tests {
		if got := IsTerminalNegotiationStatus(tt.status); got != tt.terminal {
			t.Errorf("IsTerminalNegotiationStatus(%q) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestNegotiationIsParty(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()
	stranger := uuid.New()

	n := &Negotiation{SellerID: seller, BuyerID: buyer}

	if !n.IsParty(seller) {
		t.Error("seller should be a party")
	}
	if !n.IsParty(buyer) {
		t.Error("buyer should be a party")
	}
	if n.IsParty(stranger) {
		t.Error("stranger should not be a party")
	}
}
