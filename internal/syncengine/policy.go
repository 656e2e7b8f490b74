package syncengine

import "time"

// The conflict policy in one place, as pure functions over records. The
// SQL store expresses the same rules as conditional single-statement
// updates; the memory store calls these directly.

// NormalizeKind rewrites the legacy light tag to its canonical switch
// form and fills the default for an absent kind.
func NormalizeKind(kind string) string {
	if kind == "" || kind == KindLight {
		return KindSwitch
	}
	return kind
}

// Fresher reports whether a device observation with the given logical
// time may replace the stored record: yes when no record exists, yes when
// strictly newer. Equal logical times are rejected so re-delivered
// batches are no-ops.
func Fresher(stored *Output, logicalTime int64) bool {
	if stored == nil {
		return true
	}
	return logicalTime > stored.LogicalTime
}

// NextLogicalTime computes the logical time an app write settles at: the
// larger of the caller's clock and the stored value plus one. A dashboard
// with a stale clock still moves the record strictly forward.
func NextLogicalTime(stored *Output, writeTimeMS int64) int64 {
	prev := int64(0)
	if stored != nil {
		prev = stored.LogicalTime
	}
	if writeTimeMS > prev+1 {
		return writeTimeMS
	}
	return prev + 1
}

// ObservationRecord materializes the record an accepted observation
// produces: defaults filled, kind normalized permanently, origin device.
func ObservationRecord(ownerAccount string, obs Observation, at time.Time) Output {
	rec := Output{
		OwnerAccount: ownerAccount,
		Pin:          obs.Pin,
		Status:       StatusOff,
		Speed:        0,
		Kind:         KindSwitch,
		Origin:       OriginDevice,
		ObservedAt:   at,
		LogicalTime:  obs.LogicalTime,
	}
	if obs.Status != nil && *obs.Status != "" {
		rec.Status = *obs.Status
	}
	if obs.Speed != nil {
		rec.Speed = *obs.Speed
	}
	if obs.Kind != nil {
		rec.Kind = NormalizeKind(*obs.Kind)
	}
	return rec
}

// ResolveApp materializes the record an app write produces over the
// stored state (nil for a first write). App writes always apply.
func ResolveApp(ownerAccount string, stored *Output, w AppWrite, at time.Time) Output {
	rec := Output{
		OwnerAccount: ownerAccount,
		Pin:          w.Pin,
		Status:       StatusOff,
		Speed:        0,
		Kind:         KindSwitch,
	}
	if stored != nil {
		rec = *stored
	}
	if w.Status != nil {
		rec.Status = *w.Status
	}
	if w.Speed != nil {
		rec.Speed = *w.Speed
	}
	rec.Origin = OriginApp
	rec.ObservedAt = at
	rec.LogicalTime = NextLogicalTime(stored, w.WriteTimeMS)
	return rec
}
