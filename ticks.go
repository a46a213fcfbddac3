package binstream

import (
	"fmt"
	"time"
)

// Temporal values travel as 64-bit tick counts: one tick is 100 nanoseconds,
// and absolute times count ticks since 0001-01-01T00:00:00.

// TimeKind is the discriminant written immediately before an absolute
// time's tick count.
type TimeKind uint8

const (
	KindUnspecified TimeKind = iota
	KindUTC
	KindLocal
)

// unixEpochTicks is the tick count of 1970-01-01T00:00:00.
const unixEpochTicks = 621_355_968_000_000_000

const ticksPerSecond = 10_000_000

func (k TimeKind) String() string {
	switch k {
	case KindUnspecified:
		return "Unspecified"
	case KindUTC:
		return "UTC"
	case KindLocal:
		return "Local"
	}
	return fmt.Sprintf("TimeKind(%d)", uint8(k))
}

func (k TimeKind) valid() bool { return k <= KindLocal }

// TimeToTicks converts t to a tick count and the kind matching its location.
func TimeToTicks(t time.Time) (ticks int64, kind TimeKind) {
	kind = KindLocal
	if t.Location() == time.UTC {
		kind = KindUTC
	}
	secs := t.Unix()
	ticks = unixEpochTicks + secs*ticksPerSecond + int64(t.Nanosecond())/100
	return ticks, kind
}

// TicksToTime converts a tick count back to a time.Time in the location
// implied by kind. Sub-100ns precision does not exist on the wire.
func TicksToTime(ticks int64, kind TimeKind) time.Time {
	rel := ticks - unixEpochTicks
	secs := rel / ticksPerSecond
	rem := rel % ticksPerSecond
	if rem < 0 {
		secs--
		rem += ticksPerSecond
	}
	t := time.Unix(secs, rem*100)
	if kind == KindUTC || kind == KindUnspecified {
		return t.UTC()
	}
	return t.Local()
}

// DurationToTicks converts d to 100ns ticks, truncating sub-tick precision.
func DurationToTicks(d time.Duration) int64 { return int64(d) / 100 }

// TicksToDuration converts a tick count to a time.Duration.
func TicksToDuration(ticks int64) time.Duration { return time.Duration(ticks) * 100 }
