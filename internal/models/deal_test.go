package models

import "testing"

func TestCanSetDealStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{DealStatusPending, true},
		{DealStatusPaid, true},
		{DealStatusShipped, true},
		{DealStatusCompleted, true},
		{DealStatusCanceled, true},
		{"", false},
		{"refunded", false},
		{"PENDING", false},
		{"open", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := CanSetDealStatus(tt.status); got != tt.expected {
				t.Errorf("CanSetDealStatus(%q) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestDealStatusesCovered(t *testing.T) {
	if len(DealStatuses) != 5 {
		t.Fatalf("expected 5 deal statuses, got %d", len(DealStatuses))
	}
	seen := map[string]bool{}
	for _, s := range DealStatuses {
		if seen[s] {
			t.Errorf("duplicate status %q", s)
		}
		seen[s] = true
	}
}
