package orm

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// DateTimeFormat selects how time.Time values cross the conversion boundary
// when no more specific BindType is registered for the field's type.
type DateTimeFormat int

const (
	Iso8601SpaceMs DateTimeFormat = iota
	Iso8601T
	Rfc1123
	RoundTrip
	Ticks
	FileTime
	FileTimeUtc
	OleAutomation
	JulianDay
	UnixSeconds
	UnixMillis
)

// ConnOptions carries the configuration that the conversion registry (B)
// consults when binding or extracting values. Every field defaults to false
// or to the zero DateTimeFormat (Iso8601SpaceMs), so a zero-value ConnOptions
// is always usable.
type ConnOptions struct {
	GuidAsBlob       bool
	GuidStringFormat string // empty means canonical "xxxxxxxx-xxxx-..." form
	DecimalAsBlob    bool
	TimeSpanAsTicks  bool
	DateTimeFormat   DateTimeFormat
	KeepRowguid      bool
}

// DefaultOptions returns the zero-value ConnOptions, spelled out for
// readability at call sites that want to start from documented defaults.
func DefaultOptions() ConnOptions {
	return ConnOptions{DateTimeFormat: Iso8601SpaceMs}
}

// fileOptions mirrors ConnOptions with string-keyed fields so it can be
// decoded from TOML without exporting toml struct tags on the public type.
type fileOptions struct {
	GuidAsBlob       bool   `toml:"guid_as_blob"`
	GuidStringFormat string `toml:"guid_string_format"`
	DecimalAsBlob    bool   `toml:"decimal_as_blob"`
	TimeSpanAsTicks  bool   `toml:"timespan_as_ticks"`
	DateTimeFormat   string `toml:"datetime_format"`
	KeepRowguid      bool   `toml:"keep_rowguid"`
}

var dateTimeFormatNames = map[string]DateTimeFormat{
	"iso8601_space_ms": Iso8601SpaceMs,
	"iso8601_t":        Iso8601T,
	"rfc1123":          Rfc1123,
	"round_trip":       RoundTrip,
	"ticks":            Ticks,
	"file_time":        FileTime,
	"file_time_utc":    FileTimeUtc,
	"ole_automation":   OleAutomation,
	"julian_day":       JulianDay,
	"unix_seconds":     UnixSeconds,
	"unix_millis":      UnixMillis,
}

// LoadOptionsFile parses a TOML document at path into a ConnOptions value.
// Unset keys keep ConnOptions' documented defaults. This is additive to
// Connection setup: callers can always construct a ConnOptions literal
// directly instead.
func LoadOptionsFile(path string) (ConnOptions, error) {
	var f fileOptions
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return ConnOptions{}, errors.Wrapf(err, "orm: loading options from %s", path)
	}
	opts := ConnOptions{
		GuidAsBlob:       f.GuidAsBlob,
		GuidStringFormat: f.GuidStringFormat,
		DecimalAsBlob:    f.DecimalAsBlob,
		TimeSpanAsTicks:  f.TimeSpanAsTicks,
		KeepRowguid:      f.KeepRowguid,
	}
	if f.DateTimeFormat == "" {
		opts.DateTimeFormat = Iso8601SpaceMs
		return opts, nil
	}
	dtf, ok := dateTimeFormatNames[f.DateTimeFormat]
	if !ok {
		return ConnOptions{}, errors.Newf("orm: unknown datetime_format %q", f.DateTimeFormat)
	}
	opts.DateTimeFormat = dtf
	return opts, nil
}
