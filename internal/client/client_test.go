package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/greenshed/plantnode/internal/command"
)

// nodeStub emulates the node's plain-text REST surface.
func nodeStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cached-state", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("IR Controlled LED Strip Web Service\n\n" +
			"Cached State:\n" +
			"\traw: 10\n" +
			"\tbrightness: unknown\n" +
			"\tpower: on\n" +
			"\tfunction: unknown\n" +
			"\tcolor: blue\n" +
			"\turi: /color\n"))
	})
	mux.HandleFunc("/color", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.ParseForm()
			if r.PostFormValue("color") == "blue" {
				w.Write([]byte("success"))
			} else {
				w.Write([]byte("error: argument does not match expected"))
			}
			return
		}
		w.Write([]byte("color: blue"))
	})
	mux.HandleFunc("/moisture", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moisture: 618"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCachedState(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	state, err := c.CachedState(context.Background())
	if err != nil {
		t.Fatalf("CachedState(): %v", err)
	}
	if state.Color != "blue" || state.Power != "on" || state.Raw != "10" {
		t.Errorf("state = %+v", state)
	}
	if state.Brightness != "unknown" {
		t.Errorf("brightness = %q, want unknown", state.Brightness)
	}
	if state.URI != "/color" {
		t.Errorf("uri = %q, want /color", state.URI)
	}
}

func TestGetCategory(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	value, err := c.Get(context.Background(), command.CategoryColor)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if value != "blue" {
		t.Errorf("value = %q, want blue", value)
	}
}

func TestSetAccepted(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	if err := c.Set(context.Background(), command.CategoryColor, "blue"); err != nil {
		t.Errorf("Set(blue): %v", err)
	}
}

func TestSetRejected(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	err := c.Set(context.Background(), command.CategoryColor, "turquoise")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Set(turquoise) = %v, want *CommandError", err)
	}
	if cmdErr.Body != "error: argument does not match expected" {
		t.Errorf("rejection body = %q", cmdErr.Body)
	}
}

func TestMoisture(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	v, err := c.Moisture(context.Background())
	if err != nil {
		t.Fatalf("Moisture(): %v", err)
	}
	if v != 618 {
		t.Errorf("moisture = %d, want 618", v)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := nodeStub(t)
	c := NewWithURL(srv.URL)

	_, err := c.get(context.Background(), "/nope", nil)
	if err == nil {
		t.Fatal("expected error for unknown route")
	}
}

func TestUnreachableNodeRetriesThenFails(t *testing.T) {
	c := NewWithURL("http://127.0.0.1:1") // nothing listens here
	c.MaxRetries = 1
	c.RetryDelay = time.Millisecond

	start := time.Now()
	err := c.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable node")
	}
	if elapsed := time.Since(start); elapsed < time.Millisecond {
		t.Errorf("no retry delay observed (%v)", elapsed)
	}
}

func TestParseStateIgnoresNoise(t *testing.T) {
	s := parseState("garbage\nno colon here\n\tcolor: red\n")
	if s.Color != "red" {
		t.Errorf("color = %q, want red", s.Color)
	}
	if s.Power != "" {
		t.Errorf("power = %q, want empty", s.Power)
	}
}
