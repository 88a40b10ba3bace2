package loose

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Kind tells which encoding a stored timestamp used.
type Kind int

const (
	KindMissing Kind = iota
	KindNative
	KindSecondsNanos
	KindString
	KindNumber
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNative:
		return "native"
	case KindSecondsNanos:
		return "seconds_nanos"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "invalid"
	}
}

// Dater is implemented by store-native timestamp values that know how to
// convert themselves, e.g. *timestamppb.Timestamp.
type Dater interface {
	AsTime() time.Time
}

type timeDater time.Time

func (t timeDater) AsTime() time.Time {
	return time.Time(t)
}

// Timestamp holds a point in time in whichever of the historical encodings it
// was stored with. Interpretation happens in Normalizer.
type Timestamp struct {
	kind    Kind
	native  Dater
	seconds float64
	nanos   float64
	str     string
	num     float64
	raw     json.RawMessage
}

func FromTime(t time.Time) Timestamp {
	return Timestamp{kind: KindNative, native: timeDater(t)}
}

func FromNative(d Dater) Timestamp {
	if d == nil {
		return Timestamp{}
	}
	return Timestamp{kind: KindNative, native: d}
}

func FromSecondsNanos(seconds, nanos float64) Timestamp {
	return Timestamp{kind: KindSecondsNanos, seconds: seconds, nanos: nanos}
}

func FromString(s string) Timestamp {
	return Timestamp{kind: KindString, str: s}
}

func FromNumber(n float64) Timestamp {
	return Timestamp{kind: KindNumber, num: n}
}

func (ts Timestamp) Kind() Kind {
	return ts.kind
}

func (ts Timestamp) IsZero() bool {
	return ts.kind == KindMissing
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = decodeTimestamp(bytes.TrimSpace(data))
	ts.raw = append(json.RawMessage(nil), data...)
	return nil
}

func decodeTimestamp(data []byte) Timestamp {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Timestamp{}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Timestamp{kind: KindInvalid}
		}
		return FromString(s)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return Timestamp{kind: KindInvalid}
		}
		secRaw, ok := firstKey(obj, "seconds", "_seconds")
		if !ok {
			return Timestamp{kind: KindInvalid}
		}
		seconds, ok := strictNumber(secRaw)
		if !ok {
			return Timestamp{kind: KindInvalid}
		}
		var nanos float64
		if nanosRaw, present := firstKey(obj, "nanoseconds", "_nanoseconds", "nanos"); present {
			if nanos, ok = strictNumber(nanosRaw); !ok {
				return Timestamp{kind: KindInvalid}
			}
		}
		return FromSecondsNanos(seconds, nanos)
	case 't', 'f', '[':
		return Timestamp{kind: KindInvalid}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return Timestamp{kind: KindInvalid}
		}
		return FromNumber(f)
	}
}

func firstKey(obj map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if len(ts.raw) > 0 {
		return ts.raw, nil
	}

	switch ts.kind {
	case KindNative:
		return json.Marshal(ts.native.AsTime().Format(time.RFC3339Nano))
	case KindSecondsNanos:
		return json.Marshal(map[string]float64{
			"seconds":     ts.seconds,
			"nanoseconds": ts.nanos,
		})
	case KindString:
		return json.Marshal(ts.str)
	case KindNumber:
		return strconv.AppendFloat(nil, ts.num, 'f', -1, 64), nil
	default:
		return []byte("null"), nil
	}
}
