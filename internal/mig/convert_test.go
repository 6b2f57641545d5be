package mig

import (
	"errors"
	"testing"
	"time"
)

func TestConvertRawTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  int64
		want time.Time
	}{
		{
			name: "zero is the 1601 epoch",
			raw:  0,
			want: time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unix epoch",
			raw:  116444736000000000,
			want: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sub-second precision",
			raw:  116444736000000000 + 1234567,
			want: time.Date(1970, 1, 1, 0, 0, 0, 123456700, time.UTC),
		},
		{
			name: "max accepted value",
			raw:  MaxRawTimestamp,
			want: time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertRawTimestamp(tt.raw)
			if err != nil {
				t.Fatalf("ConvertRawTimestamp(%d): %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ConvertRawTimestamp(%d) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestConvertRawTimestampOutOfRange(t *testing.T) {
	for _, raw := range []int64{-1, MaxRawTimestamp + 1} {
		_, err := ConvertRawTimestamp(raw)
		if err == nil {
			t.Fatalf("ConvertRawTimestamp(%d): expected error", raw)
		}
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("ConvertRawTimestamp(%d): expected ConversionError, got %T", raw, err)
		}
		if convErr.Raw != raw {
			t.Errorf("ConversionError.Raw = %d, want %d", convErr.Raw, raw)
		}
	}
}

func TestConvertRawTimestampDeterministic(t *testing.T) {
	const raw = 133521515000000000
	first, err := ConvertRawTimestamp(raw)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := ConvertRawTimestamp(raw)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(first) {
			t.Fatalf("conversion not deterministic: %s vs %s", got, first)
		}
	}
}

func TestRawFromTimeRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 34, 56, 789000000, time.UTC),
	}
	for _, want := range instants {
		raw := RawFromTime(want)
		got, err := ConvertRawTimestamp(raw)
		if err != nil {
			t.Fatalf("ConvertRawTimestamp(%d): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("round trip of %s via raw %d = %s", want, raw, got)
		}
	}
}

func TestConvertRecord(t *testing.T) {
	t.Run("all fields convert", func(t *testing.T) {
		rec := TimestampRecord{
			RelativePath:      "a.txt",
			CreationTimeRaw:   116444736000000000,
			LastAccessTimeRaw: 116444736000000001,
			LastWriteTimeRaw:  116444736000000002,
		}
		ts, err := convertRecord(rec)
		if err != nil {
			t.Fatal(err)
		}
		if ts.CreationRaw != rec.CreationTimeRaw || ts.LastWriteRaw != rec.LastWriteTimeRaw {
			t.Error("raw values not carried through conversion")
		}
		if !ts.LastWrite.After(ts.Creation) {
			t.Error("expected lastwrite after creation")
		}
	})

	t.Run("one bad field fails the record", func(t *testing.T) {
		rec := TimestampRecord{
			RelativePath:      "a.txt",
			CreationTimeRaw:   116444736000000000,
			LastAccessTimeRaw: -5,
			LastWriteTimeRaw:  116444736000000000,
		}
		_, err := convertRecord(rec)
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("expected ConversionError, got %v", err)
		}
		if convErr.Field != FieldLastAccess {
			t.Errorf("ConversionError.Field = %q, want %q", convErr.Field, FieldLastAccess)
		}
	})
}
