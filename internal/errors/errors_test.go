package errors

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "remote error uses message",
			err:      Remote("list habits", errors.New("connection refused")),
			expected: "Error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "habits")
	if got != "Error: failed to load habits" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestRemote(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if err := Remote("insert checkin", nil); err != nil {
			t.Errorf("Remote(nil) = %v, want nil", err)
		}
	})

	t.Run("wraps driver error", func(t *testing.T) {
		err := Remote("insert checkin", sql.ErrConnDone)

		var re *RemoteError
		if !errors.As(err, &re) {
			t.Fatalf("expected *RemoteError, got %T", err)
		}
		if re.Op != "insert checkin" {
			t.Errorf("Op = %q, want %q", re.Op, "insert checkin")
		}
		if re.Message != sql.ErrConnDone.Error() {
			t.Errorf("Message = %q, want %q", re.Message, sql.ErrConnDone.Error())
		}
		if !errors.Is(err, sql.ErrConnDone) {
			t.Error("expected errors.Is to reach the driver error")
		}
	})

	t.Run("does not double wrap", func(t *testing.T) {
		first := Remote("delete checkins", errors.New("timeout"))
		wrapped := fmt.Errorf("toggle: %w", first)
		second := Remote("other op", wrapped)
		if second != wrapped {
			t.Errorf("Remote() rewrapped an existing RemoteError")
		}
	})

	t.Run("remotef", func(t *testing.T) {
		err := Remotef("list checkins", "invalid day %q", "yesterday")
		if !IsRemote(err) {
			t.Fatal("expected IsRemote to be true")
		}
		if err.Error() != `invalid day "yesterday"` {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("plain errors are not remote", func(t *testing.T) {
		if IsRemote(errors.New("boom")) {
			t.Error("IsRemote() = true for a plain error")
		}
	})
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
