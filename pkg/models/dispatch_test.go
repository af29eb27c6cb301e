package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewDispatchRecord(t *testing.T) {
	event := InboundEvent{
		EventID:   "Ev123",
		Kind:      KindMention,
		ChannelID: "C123456",
		Text:      "What's our runway?",
		TS:        "100",
	}

	rec := NewDispatchRecord("dsp-1", event, time.Hour)

	if rec.EventID != "Ev123" {
		t.Errorf("EventID = %s, want Ev123", rec.EventID)
	}

	if rec.DispatchID != "dsp-1" {
		t.Errorf("DispatchID = %s, want dsp-1", rec.DispatchID)
	}

	if rec.Kind != KindMention {
		t.Errorf("Kind = %s, want %s", rec.Kind, KindMention)
	}

	if rec.ChannelID != "C123456" {
		t.Errorf("ChannelID = %s, want C123456", rec.ChannelID)
	}

	if rec.Status != StatusClaimed {
		t.Errorf("Status = %s, want %s", rec.Status, StatusClaimed)
	}

	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	if rec.CompletedAt != nil {
		t.Error("CompletedAt should not be set on a claimed record")
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusClaimed, false},
		{StatusReplied, true},
		{StatusSkipped, true},
		{StatusFailed, true},
		{StatusDuplicate, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := IsTerminal(tt.status); got != tt.want {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDispatchRecordTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"explicit ttl", 2 * time.Hour, 2 * time.Hour},
		{"zero falls back to default", 0, DefaultRecordTTL},
		{"negative falls back to default", -time.Hour, DefaultRecordTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewDispatchRecord("dsp-1", InboundEvent{}, tt.ttl)

			expected := time.Now().Add(tt.want).Unix()
			if diff := rec.TTL - expected; diff < -10 || diff > 10 {
				t.Errorf("TTL = %d, expected approximately %d", rec.TTL, expected)
			}
		})
	}
}

func TestNewDispatchIDUnique(t *testing.T) {
	id1 := NewDispatchID()
	id2 := NewDispatchID()

	if !strings.HasPrefix(id1, "dsp-") {
		t.Errorf("dispatch id should start with 'dsp-', got %s", id1)
	}

	if id1 == id2 {
		t.Error("dispatch ids should be unique")
	}
}

func TestInboundEventThreadAnchor(t *testing.T) {
	tests := []struct {
		name     string
		ts       string
		threadTS string
		want     string
	}{
		{"top level message anchors on itself", "100", "", "100"},
		{"threaded message anchors on the thread", "105", "100", "100"},
		{"nothing set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := InboundEvent{TS: tt.ts, ThreadTS: tt.threadTS}
			if got := ev.ThreadAnchor(); got != tt.want {
				t.Errorf("ThreadAnchor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInboundEventAuthorIsBot(t *testing.T) {
	if (InboundEvent{}).AuthorIsBot() {
		t.Error("event without bot id should not be bot authored")
	}
	if !(InboundEvent{BotID: "B123"}).AuthorIsBot() {
		t.Error("event with bot id should be bot authored")
	}
}

func TestRoleConstants(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{RoleSystem, "system"},
		{RoleUser, "user"},
		{RoleAssistant, "assistant"},
	}

	for _, tt := range tests {
		if tt.role != tt.want {
			t.Errorf("Role constant = %s, want %s", tt.role, tt.want)
		}
	}
}
