package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/momentum/internal/storage/memory"
)

func TestToday(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 20:00 UTC on the 13th is already the 14th in Tokyo
	now := time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"utc", time.UTC, "2026-10-13"},
		{"tokyo", tokyo, "2026-10-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{Location: tt.loc, Now: func() time.Time { return now }}
			if got := ctx.Today(); got != tt.want {
				t.Errorf("Today() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriterDefault(t *testing.T) {
	ctx := &Context{}
	if ctx.Writer() != os.Stdout {
		t.Error("expected stdout when Out is unset")
	}

	var buf bytes.Buffer
	ctx.Out = &buf
	if ctx.Writer() != &buf {
		t.Error("expected configured writer")
	}
}

func TestControllerUsesToday(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	ctx := &Context{
		Store:    memory.NewStore(time.UTC),
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}
	if got := ctx.Controller().Day(); got != "2026-10-14" {
		t.Errorf("Controller().Day() = %q", got)
	}
}
