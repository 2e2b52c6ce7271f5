package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	t.Run("Writes to the log file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "output.log")
		if err := Init(file, true); err != nil {
			t.Fatal(err)
		}

		Out().Print("hello out")
		Err().Print("hello err")
		Debug().Print("hello debug")

		if err := Close(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"[INFO] ", "hello out", "[ERROR] ", "hello err", "[DEBUG] ", "hello debug"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("log file is missing %q:\n%s", want, data)
			}
		}
	})

	t.Run("Drops debug output when disabled", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "output.log")
		if err := Init(file, false); err != nil {
			t.Fatal(err)
		}

		Debug().Print("should not appear")
		Out().Print("visible")
		_ = Close()

		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "should not appear") {
			t.Errorf("debug line was written with debug disabled")
		}
		if !strings.Contains(string(data), "visible") {
			t.Errorf("info line missing")
		}
	})

	t.Run("Close without a file", func(t *testing.T) {
		if err := Init("", false); err != nil {
			t.Fatal(err)
		}
		if err := Close(); err != nil {
			t.Errorf("Close returned %v", err)
		}
	})
}
