package report

import (
	"strconv"
	"strings"
	"time"
)

// Literals that downstream report consumers already parse.
const (
	NullValue  = "None"
	TrueValue  = "True"
	FalseValue = "False"
)

// ListSeparator joins list-valued fields inside a single column.
const ListSeparator = "/ "

// Str renders an optional string.
func Str(p *string) string {
	if p == nil {
		return NullValue
	}
	return *p
}

// Enum renders an SDK enum; the zero value means unset.
func Enum[T ~string](v T) string {
	if v == "" {
		return NullValue
	}
	return string(v)
}

// Bool renders an optional bool as True/False.
func Bool(p *bool) string {
	if p == nil {
		return NullValue
	}
	return FormatBool(*p)
}

// FormatBool renders b as True/False.
func FormatBool(b bool) string {
	if b {
		return TrueValue
	}
	return FalseValue
}

// Int renders an optional int.
func Int(p *int) string {
	if p == nil {
		return NullValue
	}
	return strconv.Itoa(*p)
}

// Int64 renders an optional int64.
func Int64(p *int64) string {
	if p == nil {
		return NullValue
	}
	return strconv.FormatInt(*p, 10)
}

// Float32 renders an optional float32 using the shortest exact form.
func Float32(p *float32) string {
	if p == nil {
		return NullValue
	}
	return strconv.FormatFloat(float64(*p), 'f', -1, 32)
}

// Time renders an optional timestamp as RFC 3339 in UTC.
func Time(p *time.Time) string {
	if p == nil {
		return NullValue
	}
	return p.UTC().Format(time.RFC3339)
}

// List joins list items with ListSeparator. A nil list renders as NullValue,
// an empty one as the empty string.
func List(items []string) string {
	if items == nil {
		return NullValue
	}
	return strings.Join(items, ListSeparator)
}
