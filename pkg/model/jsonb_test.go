package model

import (
	"encoding/json"
	"testing"
)

func TestJSONBValueAndScan(t *testing.T) {
	original := JSONB{"candidate_name": "Ada", "interview_round": 2}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	data, ok := value.([]byte)
	if !ok {
		t.Fatalf("expected []byte value, got %T", value)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal value error: %v", err)
	}

	if decoded["candidate_name"] != "Ada" {
		t.Fatalf("expected candidate_name Ada, got %v", decoded["candidate_name"])
	}

	var scanned JSONB
	if err := scanned.Scan(data); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if scanned["candidate_name"] != "Ada" {
		t.Fatalf("expected scanned candidate_name Ada, got %v", scanned["candidate_name"])
	}
}

func TestJSONBGormDataType(t *testing.T) {
	value := JSONB{"ok": true}
	if value.GormDataType() != "jsonb" {
		t.Fatalf("expected jsonb data type, got %q", value.GormDataType())
	}
}

func TestDelayedEmailStatusActive(t *testing.T) {
	cases := []struct {
		status DelayedEmailStatus
		want   bool
	}{
		{EmailScheduled, true},
		{EmailProcessing, true},
		{EmailSent, false},
		{EmailFailed, false},
		{EmailCancelled, false},
	}

	for _, tc := range cases {
		if got := tc.status.Active(); got != tc.want {
			t.Fatalf("Active(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
