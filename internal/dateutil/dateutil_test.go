package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "year", format: "YYYY", want: "2006"},
		{name: "short year", format: "YY", want: "06"},
		{name: "full month", format: "MMMM", want: "January"},
		{name: "short month", format: "MMM", want: "Jan"},
		{name: "padded month", format: "MM", want: "01"},
		{name: "month", format: "M", want: "1"},
		{name: "padded day", format: "DD", want: "02"},
		{name: "day", format: "D", want: "2"},
		{name: "iso combination", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "literal separators", format: "DD.MM.YY", want: "02.01.06"},
		{name: "bracket escape", format: "[Posted] MMMM D", want: "Posted January 2"},
		{name: "preset", format: "long", want: "January 2, 2006"},
		{name: "preset case-insensitive", format: "ISO", want: "2006-01-02"},
		{name: "empty", format: "", wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", format: "[oops YYYY", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: strings.Repeat("Y", MaxDateFormatLength+1), wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Layout(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2016, 9, 8, 10, 0, 0, 0, time.UTC)
	day := time.Date(2016, 5, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   any
		want    time.Time
		wantErr bool
	}{
		{name: "time value", value: day, want: day},
		{name: "time pointer", value: &day, want: day},
		{name: "date string", value: "2016-05-19", want: day},
		{name: "slash date", value: "2016/05/19", want: day},
		{name: "padded string", value: "  2016-05-19 ", want: day},
		{name: "datetime string", value: "2016-05-19 00:00:00", want: day},
		{name: "rfc3339", value: "2016-05-19T00:00:00Z", want: day},
		{name: "today", value: "Today", want: now},
		{name: "garbage", value: "next tuesday", wantErr: true},
		{name: "number", value: 2016, wantErr: true},
		{name: "nil pointer", value: (*time.Time)(nil), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.value, now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("Parse(%v) error = %v, want ErrInvalidDate", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%v) unexpected error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Format
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   any
		format  string
		want    string
		wantErr error
	}{
		{name: "default format", value: "2016-05-19", want: "2016-05-19"},
		{name: "long preset", value: "2016-05-19", format: "long", want: "May 19, 2016"},
		{name: "european preset", value: "2016-05-19", format: "european", want: "19/05/2016"},
		{name: "custom", value: "2016-05-19", format: "D MMM YY", want: "19 May 16"},
		{name: "today", value: Today, format: "us", want: "01/15/2024"},
		{name: "bad value", value: "soon", wantErr: ErrInvalidDate},
		{name: "bad format", value: "2016-05-19", format: "[x", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(tt.value, tt.format, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Format() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
