package ocidrv

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp wraps a point in time the way the backend's OCIDateTime does,
// carrying an HState so the driver knows whether it owns the underlying
// descriptor. Format/ParseTimestamp must round-trip through this type.
type Timestamp struct {
	t      time.Time
	hstate HState
}

// NewTimestamp wraps t as a driver-owned Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, hstate: HStateAllocated}
}

func (ts Timestamp) Time() time.Time { return ts.t }
func (ts Timestamp) HState() HState  { return ts.hstate }

// Format renders ts using an Oracle-style format string (a small, fixed
// subset: YYYY, MM, DD, HH24, MI, SS, FF, TZR).
func (ts Timestamp) Format(layout string) string {
	return formatOracle(ts.t, layout)
}

// ParseTimestamp parses s using the same format-string dialect Format
// renders with, so format(parse(s, fmt), fmt) == s for library-produced s.
func ParseTimestamp(s, layout string) (Timestamp, error) {
	t, err := parseOracle(s, layout)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{t: t, hstate: HStateAllocated}, nil
}

// Number is the driver's normalised representation of every numeric SQL
// type (NUMBER, FLOAT, INTEGER, ...); internally it is buffer-sized like
// the backend's OCINumber but exposed to Go as a decimal string plus a
// fast-path float64/int64.
type Number struct {
	text string
}

func NewNumber(f float64) Number { return Number{text: strconv.FormatFloat(f, 'f', -1, 64)} }

func (n Number) Float64() (float64, error) { return strconv.ParseFloat(n.text, 64) }
func (n Number) Int64() (int64, error)     { return strconv.ParseInt(n.text, 10, 64) }
func (n Number) String() string            { return n.text }

// Format renders n with an Oracle NUMBER format mask; only the FM/9/0/.
// subset used by the default mask (see DefaultFormats) is honoured.
func (n Number) Format(mask string) string {
	f, err := n.Float64()
	if err != nil {
		return n.text
	}
	return formatNumber(f, mask)
}

// ParseNumber parses s with the same numeric format mask Format uses.
func ParseNumber(s, mask string) (Number, error) {
	f, err := parseNumber(s, mask)
	if err != nil {
		return Number{}, err
	}
	return NewNumber(f), nil
}

// Interval represents INTERVAL YEAR TO MONTH / DAY TO SECOND values.
type Interval struct {
	Months  int64 // year-to-month component, in months
	Days    int64
	Seconds int64
	Nanos   int64
	hstate  HState
}

func (iv Interval) HState() HState { return iv.hstate }

func (iv Interval) String() string {
	if iv.Months != 0 {
		return fmt.Sprintf("%d-%d", iv.Months/12, iv.Months%12)
	}
	return fmt.Sprintf("%d %02d:%02d:%02d.%09d", iv.Days, iv.Seconds/3600, (iv.Seconds/60)%60, iv.Seconds%60, iv.Nanos)
}

// formatOracle and parseOracle implement the small fixed dialect of
// Oracle date/timestamp format masks the DefaultFormats table
// uses. Only the tokens that table actually contains are supported;
// anything else passes through literally, matching the backend's
// behaviour for unrecognized mask characters in practice.
func formatOracle(t time.Time, layout string) string {
	repl := map[string]string{
		"YYYY": fmt.Sprintf("%04d", t.Year()),
		"MM":   fmt.Sprintf("%02d", int(t.Month())),
		"DD":   fmt.Sprintf("%02d", t.Day()),
		"HH24": fmt.Sprintf("%02d", t.Hour()),
		"MI":   fmt.Sprintf("%02d", t.Minute()),
		"SS":   fmt.Sprintf("%02d", t.Second()),
		"FF":   fmt.Sprintf("%09d", t.Nanosecond()),
		"TZR":  t.Location().String(),
	}
	out := layout
	for _, tok := range []string{"YYYY", "HH24", "MM", "DD", "MI", "SS", "FF", "TZR"} {
		out = replaceAll(out, tok, repl[tok])
	}
	return out
}

func parseOracle(s, layout string) (time.Time, error) {
	goLayout, order := oracleLayoutToGo(layout)
	_ = order
	return time.Parse(goLayout, s)
}

// oracleLayoutToGo maps the fixed token set used by DefaultFormats to a Go
// reference-time layout string.
func oracleLayoutToGo(layout string) (string, []string) {
	out := layout
	subs := []struct{ tok, repl string }{
		{"YYYY", "2006"},
		{"HH24", "15"},
		{"MM", "01"},
		{"DD", "02"},
		{"MI", "04"},
		{"SS", "05"},
		{"FF", "000000000"},
		{"TZR", "MST"},
	}
	for _, s := range subs {
		out = replaceAll(out, s.tok, s.repl)
	}
	return out, nil
}

func replaceAll(s, old, new string) string {
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			return s
		}
		s = s[:idx] + new + s[idx+len(old):]
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// formatNumber renders f with the fixed-point/comma-free subset of the
// NUMBER format mask used by DefaultFormats ("FM99...990.999...").
func formatNumber(f float64, mask string) string {
	dot := indexOf(mask, ".")
	decimals := 0
	if dot >= 0 {
		decimals = len(mask) - dot - 1
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

func parseNumber(s, mask string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
