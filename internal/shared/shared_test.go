package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseIndexes(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		n       int
		want    []int
		wantErr error
	}{
		{name: "single position", input: "1", n: 3, want: []int{0}},
		{name: "multiple positions", input: "1,3", n: 3, want: []int{0, 2}},
		{name: "whitespace and empty parts", input: " 2 , ,3 ", n: 3, want: []int{1, 2}},
		{name: "out of range", input: "4", n: 3, wantErr: ErrInvalidArgument},
		{name: "zero", input: "0", n: 3, wantErr: ErrInvalidArgument},
		{name: "not a number", input: "a", n: 3, wantErr: ErrInvalidArgument},
		{name: "empty", input: "", n: 3, wantErr: ErrMissingArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndexes(tt.input, tt.n)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseIndexes() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIndexes() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseIndexes() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseIndexes()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected log output to contain key/value pair, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "jam.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("to file")

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected log file to exist: %v", err)
		}
	})

	t.Run("NopLogger discards", func(t *testing.T) {
		NopLogger().Error("ignored")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://accounts.spotify.com/authorize?client_id=x&code_challenge=y"

	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", url}},
		{"linux", []string{"xdg-open", url}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", url}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(cmd.Args, " ") != strings.Join(tt.want, " ") {
				t.Errorf("got %q, want %q", cmd.Args, tt.want)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		if _, err := browserCommand("plan9", url); err == nil {
			t.Error("expected error")
		}

		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser(url); err == nil || !strings.Contains(err.Error(), "plan9") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})
}
