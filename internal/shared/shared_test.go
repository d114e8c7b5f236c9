package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatTimestamp(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "fractional seconds", in: "2024-05-01T10:20:30.123456Z", want: "2024-05-01 10:20:30"},
		{name: "whole seconds", in: "2024-05-01T10:20:30Z", want: "2024-05-01 10:20:30Z"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{in: "debug", want: log.DebugLevel},
		{in: " WARN ", want: log.WarnLevel},
		{in: "", want: log.InfoLevel},
		{in: "nonsense", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestVerifyAndReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.csv")
	if err := os.WriteFile(path, []byte("type,flowrate\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	t.Run("Reads File", func(t *testing.T) {
		data, err := VerifyAndReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "type,flowrate\n" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		if _, err := VerifyAndReadFile(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		if _, err := VerifyAndReadFile(dir); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := VerifyAndReadFile(filepath.Join(dir, "nope.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eqviz.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output to be written")
	}
}

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	tc := []struct {
		goos string
		bin  string
	}{
		{goos: "darwin", bin: "open"},
		{goos: "linux", bin: "xdg-open"},
		{goos: "windows", bin: "cmd"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			cmd, err := browserCommand("http://127.0.0.1:3000")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filepath.Base(cmd.Path) != tt.bin && cmd.Args[0] != tt.bin {
				t.Errorf("expected %s, got %v", tt.bin, cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("http://x"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		err := fmt.Errorf("login: %w", &ValidationError{Field: "password"})

		if !errors.Is(err, ErrValidation) {
			t.Error("expected errors.Is ErrValidation")
		}
		if UserMessage(err) != "password is required" {
			t.Errorf("unexpected message %q", UserMessage(err))
		}
	})

	t.Run("ValidationError With Message", func(t *testing.T) {
		err := &ValidationError{Field: "username", Message: "Please enter username and password"}
		if UserMessage(err) != "Please enter username and password" {
			t.Errorf("unexpected message %q", UserMessage(err))
		}
	})

	t.Run("AuthenticationError", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := &AuthenticationError{Status: 0, Message: "Login failed", Err: cause}

		if !errors.Is(err, ErrAuthentication) {
			t.Error("expected errors.Is ErrAuthentication")
		}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable")
		}
		if UserMessage(err) != "Login failed" {
			t.Errorf("unexpected message %q", UserMessage(err))
		}
	})

	t.Run("UploadError", func(t *testing.T) {
		err := &UploadError{Status: 400, Message: "Missing required column 'type'"}

		if !errors.Is(err, ErrUpload) {
			t.Error("expected errors.Is ErrUpload")
		}
		if errors.Is(err, ErrAuthentication) {
			t.Error("upload error should not match ErrAuthentication")
		}
		if UserMessage(err) != "Missing required column 'type'" {
			t.Errorf("unexpected message %q", UserMessage(err))
		}
	})

	t.Run("StorageDecodeError", func(t *testing.T) {
		err := &StorageDecodeError{Key: "uploads", Err: errors.New("unexpected end of JSON input")}
		if !errors.Is(err, ErrStorageDecode) {
			t.Error("expected errors.Is ErrStorageDecode")
		}
	})

	t.Run("UserMessage Busy", func(t *testing.T) {
		if UserMessage(ErrBusy) == ErrBusy.Error() {
			t.Error("expected friendly busy message")
		}
	})

	t.Run("UserMessage Nil", func(t *testing.T) {
		if UserMessage(nil) != "" {
			t.Error("expected empty message for nil error")
		}
	})
}
