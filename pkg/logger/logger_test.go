package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInit_Singleton(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	first := Init(Options{Level: "debug", Output: &buf})
	// A second Init must not rebuild the logger.
	second := Init(Options{Level: "error", Output: &bytes.Buffer{}})

	first.Debug().Msg("visible")
	second.Debug().Msg("also visible")
	got := Get()
	got.Info().Msg("via-get")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Fatalf("expected debug output, got %q", out)
	}
	if !strings.Contains(out, "via-get") {
		t.Fatalf("Get must return the logger built by the first Init, got %q", out)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	defer func() {
		if recover() == nil {
			t.Fatalf("Get before Init must panic")
		}
	}()
	Get()
}

func TestParseLevel_Default(t *testing.T) {
	if parseLevel("nonsense") != parseLevel("info") {
		t.Fatalf("unknown level must default to info")
	}
	if parseLevel(" WARN ") != parseLevel("warning") {
		t.Fatalf("level parsing must trim and lowercase")
	}
}
