package domain

import "testing"

func TestParseSendStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"interested", StatusInterested, true},
		{"ignored", StatusIgnored, true},
		{"accepted", "", false},
		{"rejected", "", false},
		{"Interested", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSendStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSendStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseReviewStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"accepted", StatusAccepted, true},
		{"rejected", StatusRejected, true},
		{"interested", "", false},
		{"ignored", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseReviewStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseReviewStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanReview(t *testing.T) {
	if !StatusInterested.CanReview() {
		t.Error("interested should be reviewable")
	}
	for _, s := range []Status{StatusIgnored, StatusAccepted, StatusRejected} {
		if s.CanReview() {
			t.Errorf("%q should be terminal", s)
		}
	}
}

func TestActivityVerb(t *testing.T) {
	tests := []struct {
		status    Status
		recipient bool
		want      string
	}{
		{StatusInterested, true, "sent you a connection request"},
		{StatusInterested, false, "received your connection request"},
		{StatusIgnored, true, "passed on your profile"},
		{StatusIgnored, false, "you passed on"},
		{StatusAccepted, true, "accepted your connection"},
		{StatusAccepted, false, "you connected with"},
		{StatusRejected, true, "declined your connection"},
		{StatusRejected, false, "you declined connection with"},
	}
	for _, tt := range tests {
		if got := ActivityVerb(tt.status, tt.recipient); got != tt.want {
			t.Errorf("ActivityVerb(%q, %v) = %q, want %q", tt.status, tt.recipient, got, tt.want)
		}
	}
}
