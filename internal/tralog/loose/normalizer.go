package loose

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Quality of a normalized timestamp. Fallback means the stored value could not
// be interpreted and the current instant was substituted.
type Quality int

const (
	QualityOK Quality = iota
	QualityFallback
)

func (q Quality) String() string {
	if q == QualityFallback {
		return "fallback"
	}
	return "ok"
}

const (
	// numbers below this magnitude are epoch seconds, above it epoch millis
	epochSecondsThreshold = 10_000_000_000
	// largest representable date, in milliseconds from the epoch, either direction
	maxEpochMillis = 8.64e15
)

type Normalized struct {
	Time    time.Time
	Quality Quality
	Kind    Kind
}

func (n Normalized) IsFallback() bool {
	return n.Quality == QualityFallback
}

type Normalizer struct {
	now func() time.Time
	loc *time.Location
}

// NewNormalizer returns a normalizer that reads zone-less date-times in loc
// and uses now for the fallback instant.
func NewNormalizer(now func() time.Time, loc *time.Location) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{
		now: now,
		loc: loc,
	}
}

func (n *Normalizer) Normalize(ts Timestamp) Normalized {
	switch ts.kind {
	case KindNative:
		t := ts.native.AsTime()
		if !t.IsZero() {
			return Normalized{Time: t, Kind: KindNative}
		}
	case KindSecondsNanos:
		if t, ok := fromMillis(ts.seconds*1000 + ts.nanos/1e6); ok {
			return Normalized{Time: t, Kind: KindSecondsNanos}
		}
	case KindString:
		if t, ok := n.parseString(ts.str); ok {
			return Normalized{Time: t, Kind: KindString}
		}
	case KindNumber:
		ms := ts.num
		if math.Abs(ms) < epochSecondsThreshold {
			ms *= 1000
		}
		if t, ok := fromMillis(ms); ok {
			return Normalized{Time: t, Kind: KindNumber}
		}
	}

	return Normalized{
		Time:    n.now(),
		Quality: QualityFallback,
		Kind:    ts.kind,
	}
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04Z07:00",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		"Mon Jan 02 2006 15:04:05 GMT-0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"2006/1/2",
		"Jan 2, 2006",
		"January 2, 2006",
	}
	jsZoneComment = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

func (n *Normalizer) parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// plain dates are UTC midnight
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}

	// Date.prototype.toString appends a "(Japan Standard Time)" style comment
	s = jsZoneComment.ReplaceAllString(s, "")

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
