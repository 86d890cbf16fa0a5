package status

import (
	"testing"

	"github.com/hireflow/hireflow/pkg/model"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		raw  string
		want model.ApplicationStatus
		ok   bool
	}{
		{"application_submitted", Submitted, true},
		{"under_review", UnderReview, true},
		{"shortlisted", Shortlisted, true},
		{"interviewed", Interviewed, true},
		{"hired", Hired, true},
		{"rejected", Rejected, true},
		{"waiting_list", WaitingList, true},
		// Retained legacy members map to themselves.
		{"shortlisted_for_hr", ShortlistedForHR, true},
		{"shortlisted_for_manager", ShortlistedForManager, true},
		{"interviewed_by_hr", InterviewedByHR, true},
		{"interviewed_by_manager", InterviewedByManager, true},
		// Old synonyms fold onto the canonical member.
		{"submitted", Submitted, true},
		{"new", Submitted, true},
		{"in_review", UnderReview, true},
		{"reviewing", UnderReview, true},
		{"pending_review", UnderReview, true},
		{"waitlisted", WaitingList, true},
		{"on_hold", WaitingList, true},
		{"selected", Hired, true},
		{"declined", Rejected, true},
		// Unknown values are rejected.
		{"promoted", "", false},
		{"", "", false},
		{"HIRED", "", false},
	}

	for _, tc := range cases {
		got, ok := Canonicalize(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Canonicalize(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNotifyKeyFoldsLegacyStages(t *testing.T) {
	cases := []struct {
		in   model.ApplicationStatus
		want model.ApplicationStatus
	}{
		{ShortlistedForHR, Shortlisted},
		{ShortlistedForManager, Shortlisted},
		{InterviewedByHR, Interviewed},
		{InterviewedByManager, Interviewed},
		{Hired, Hired},
		{UnderReview, UnderReview},
	}

	for _, tc := range cases {
		if got := NotifyKey(tc.in); got != tc.want {
			t.Fatalf("NotifyKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNotifiable(t *testing.T) {
	for _, s := range []model.ApplicationStatus{Hired, Rejected, WaitingList, Shortlisted, Interviewed, ShortlistedForHR, InterviewedByManager} {
		if !Notifiable(s) {
			t.Fatalf("expected %q to be notifiable", s)
		}
	}
	for _, s := range []model.ApplicationStatus{Submitted, UnderReview} {
		if Notifiable(s) {
			t.Fatalf("did not expect %q to be notifiable", s)
		}
	}
}

func TestSettingsKeyFoldsAliasesAndStages(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"rejected", "rejected", true},
		{"waiting_list", "waiting_list", true},
		{"waitlisted", "waiting_list", true},
		{"on_hold", "waiting_list", true},
		{"shortlisted_for_hr", "shortlisted", true},
		{"interviewed_by_manager", "interviewed", true},
		{"selected", "hired", true},
		{"promoted", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := SettingsKey(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("SettingsKey(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
