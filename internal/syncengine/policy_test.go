package syncengine

import (
	"testing"
	"time"
)

func TestNormalizeKind(t *testing.T) {
	if got := NormalizeKind("light"); got != "switch" {
		t.Fatalf("legacy light tag should normalize to switch, got %q", got)
	}
	if got := NormalizeKind(""); got != "switch" {
		t.Fatalf("absent kind should default to switch, got %q", got)
	}
	if got := NormalizeKind("fan"); got != "fan" {
		t.Fatalf("fan should pass through, got %q", got)
	}
}

func TestFresherStrictOrdering(t *testing.T) {
	if !Fresher(nil, 0) {
		t.Fatal("first write must always be accepted")
	}
	stored := &Output{LogicalTime: 100}
	if !Fresher(stored, 101) {
		t.Fatal("strictly newer observation must be accepted")
	}
	if Fresher(stored, 100) {
		t.Fatal("equal logical time must be rejected (re-delivery)")
	}
	if Fresher(stored, 50) {
		t.Fatal("stale observation must be rejected")
	}
}

func TestNextLogicalTimeMonotonic(t *testing.T) {
	if got := NextLogicalTime(nil, 0); got != 1 {
		t.Fatalf("first app write with zero clock should settle at 1, got %d", got)
	}
	if got := NextLogicalTime(nil, 500); got != 500 {
		t.Fatalf("first app write should take the caller clock, got %d", got)
	}
	stored := &Output{LogicalTime: 100}
	if got := NextLogicalTime(stored, 50); got != 101 {
		t.Fatalf("stale caller clock must still advance past stored, got %d", got)
	}
	if got := NextLogicalTime(stored, 100); got != 101 {
		t.Fatalf("equal caller clock must still advance, got %d", got)
	}
	if got := NextLogicalTime(stored, 5000); got != 5000 {
		t.Fatalf("fresh caller clock should win, got %d", got)
	}
}

func TestObservationRecordDefaults(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := ObservationRecord("acct1", Observation{Pin: 14, LogicalTime: 9}, at)
	if rec.Status != "off" || rec.Speed != 0 || rec.Kind != "switch" {
		t.Fatalf("absent fields should take defaults, got %+v", rec)
	}
	if rec.Origin != OriginDevice || rec.LogicalTime != 9 || !rec.ObservedAt.Equal(at) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestObservationRecordNormalizesKindOnWrite(t *testing.T) {
	kind := "light"
	rec := ObservationRecord("acct1", Observation{Pin: 2, Kind: &kind, LogicalTime: 1}, time.Now())
	if rec.Kind != "switch" {
		t.Fatalf("device-reported legacy kind must be corrected permanently, got %q", rec.Kind)
	}
}

func TestResolveAppPartialUpdate(t *testing.T) {
	at := time.Now()
	speed := 40
	stored := &Output{OwnerAccount: "acct1", Pin: 3, Status: "on", Speed: 10, Kind: "fan", Origin: OriginDevice, LogicalTime: 70}
	rec := ResolveApp("acct1", stored, AppWrite{Pin: 3, Speed: &speed, WriteTimeMS: 20}, at)
	if rec.Status != "on" {
		t.Fatalf("unset status should keep stored value, got %q", rec.Status)
	}
	if rec.Speed != 40 {
		t.Fatalf("speed should be updated, got %d", rec.Speed)
	}
	if rec.Origin != OriginApp {
		t.Fatalf("app write must set origin app, got %q", rec.Origin)
	}
	if rec.LogicalTime != 71 {
		t.Fatalf("stale app clock must land at stored+1, got %d", rec.LogicalTime)
	}
}

func TestResolveAppFirstWrite(t *testing.T) {
	status := "on"
	rec := ResolveApp("acct1", nil, AppWrite{Pin: 7, Status: &status, WriteTimeMS: 1000}, time.Now())
	if rec.Status != "on" || rec.Speed != 0 || rec.Kind != "switch" {
		t.Fatalf("first app write should fill defaults, got %+v", rec)
	}
	if rec.LogicalTime != 1000 {
		t.Fatalf("unexpected logical time %d", rec.LogicalTime)
	}
}
