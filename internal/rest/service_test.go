package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/greenshed/plantnode/internal/command"
	"github.com/greenshed/plantnode/internal/hardware"
)

// fixedSensor always reads the same moisture value.
type fixedSensor struct{ value int }

func (f *fixedSensor) Read() (int, error) { return f.value, nil }

func newTestService(t *testing.T) (*Service, *hardware.SimIRSink) {
	t.Helper()
	sink := &hardware.SimIRSink{}
	s := NewService("127.0.0.1:0", sink, &fixedSensor{value: 618}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start(): %v", err)
	}
	t.Cleanup(s.Stop)
	return s, sink
}

func get(uri string, args map[string]string) *request {
	return &request{method: http.MethodGet, uri: uri, args: args}
}

func post(uri string, args map[string]string) *request {
	return &request{method: http.MethodPost, uri: uri, args: args}
}

func TestCacheUnknownAfterStart(t *testing.T) {
	s, _ := newTestService(t)

	for _, cat := range command.Categories() {
		resp := s.dispatch(get("/"+string(cat), nil))
		want := string(cat) + ": unknown"
		if resp.body != want {
			t.Errorf("GET /%s = %q, want %q", cat, resp.body, want)
		}
	}

	resp := s.dispatch(get("/raw", nil))
	if resp.body != "raw: unknown" {
		t.Errorf("GET /raw = %q, want %q", resp.body, "raw: unknown")
	}
}

func TestStartResetsCache(t *testing.T) {
	s, _ := newTestService(t)

	s.dispatch(post("/color", map[string]string{"color": "red"}))
	if s.Cache().Color != "red" {
		t.Fatalf("precondition failed: color = %q", s.Cache().Color)
	}

	// Restart the service; every field must read unknown again
	s.Stop()
	if err := s.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	c := s.Cache()
	for name, got := range map[string]string{
		"raw": c.Raw, "brightness": c.Brightness, "power": c.Power,
		"function": c.Function, "color": c.Color, "uri": c.URI,
	} {
		if got != Unknown {
			t.Errorf("after restart %s = %q, want %q", name, got, Unknown)
		}
	}
}

// TestPostValidTokens covers every token in every category: the cache field
// takes the exact token and the mapped code is forwarded exactly once.
func TestPostValidTokens(t *testing.T) {
	for _, cat := range command.Categories() {
		for _, token := range command.Tokens(cat) {
			t.Run(string(cat)+"/"+token, func(t *testing.T) {
				s, sink := newTestService(t)

				resp := s.dispatch(post("/"+string(cat), map[string]string{string(cat): token}))
				if resp.status != http.StatusOK || resp.body != "success" {
					t.Fatalf("response = %d %q, want 200 %q", resp.status, resp.body, "success")
				}

				if got := *s.cache.field(string(cat)); got != token {
					t.Errorf("cache field = %q, want %q", got, token)
				}

				wantCode, _ := command.Lookup(cat, token)
				sent := sink.Sent()
				if len(sent) != 1 {
					t.Fatalf("IR sink received %d codes, want 1", len(sent))
				}
				if sent[0] != byte(wantCode) {
					t.Errorf("IR code = 0x%02x, want 0x%02x", sent[0], byte(wantCode))
				}

				// The raw field tracks the last transmitted code
				if got, want := s.Cache().Raw, strconv.Itoa(int(wantCode)); got != want {
					t.Errorf("raw field = %q, want %q", got, want)
				}
			})
		}
	}
}

// TestPostUnknownToken verifies tokens outside the table leave the cache
// untouched and transmit nothing.
func TestPostUnknownToken(t *testing.T) {
	tests := []struct {
		uri   string
		arg   string
		value string
	}{
		{"/brightness", "brightness", "sideways"},
		{"/power", "power", "maybe"},
		{"/function", "function", "sparkle"},
		{"/color", "color", "BLUE"},
	}

	for _, tt := range tests {
		t.Run(tt.uri+"="+tt.value, func(t *testing.T) {
			s, sink := newTestService(t)

			resp := s.dispatch(post(tt.uri, map[string]string{tt.arg: tt.value}))
			if resp.body != "error: argument does not match expected" {
				t.Errorf("body = %q, want token-mismatch error", resp.body)
			}
			if resp.status != http.StatusOK {
				t.Errorf("status = %d, want 200 (legacy protocol)", resp.status)
			}
			if got := *s.cache.field(tt.arg); got != Unknown {
				t.Errorf("cache field mutated to %q on invalid token", got)
			}
			if n := len(sink.Sent()); n != 0 {
				t.Errorf("IR sink received %d codes on invalid token, want 0", n)
			}
		})
	}
}

// TestPostMissingArgument checks every command route rejects a POST whose
// expected argument key is absent.
func TestPostMissingArgument(t *testing.T) {
	uris := []string{"/raw", "/brightness", "/power", "/function", "/color"}

	for _, uri := range uris {
		t.Run(uri, func(t *testing.T) {
			s, sink := newTestService(t)

			resp := s.dispatch(post(uri, nil))
			if resp.body != "error: argument expected" {
				t.Errorf("body = %q, want %q", resp.body, "error: argument expected")
			}
			if n := len(sink.Sent()); n != 0 {
				t.Errorf("IR sink received %d codes, want 0", n)
			}

			c := s.Cache()
			for name, got := range map[string]string{
				"raw": c.Raw, "brightness": c.Brightness, "power": c.Power,
				"function": c.Function, "color": c.Color,
			} {
				if got != Unknown {
					t.Errorf("field %s mutated to %q", name, got)
				}
			}
		})
	}
}

// TestDocumentationIdempotent: documentation GETs return identical static
// text on every call and mutate nothing but the cache URI.
func TestDocumentationIdempotent(t *testing.T) {
	uris := []string{"/raw", "/brightness", "/power", "/function", "/color", "/moisture"}

	for _, uri := range uris {
		t.Run(uri, func(t *testing.T) {
			s, _ := newTestService(t)
			docArgs := map[string]string{"documentation": "true"}

			first := s.dispatch(get(uri, docArgs))
			second := s.dispatch(get(uri, docArgs))
			if first.body != second.body {
				t.Error("documentation text differs between calls")
			}
			if first.body == "" || strings.HasPrefix(first.body, "error") {
				t.Errorf("unexpected documentation body %q", first.body)
			}

			c := s.Cache()
			if c.Color != Unknown || c.Power != Unknown || c.Raw != Unknown {
				t.Error("documentation GET mutated command state")
			}
			if c.URI != uri {
				t.Errorf("cache URI = %q, want %q", c.URI, uri)
			}
		})
	}
}

// TestDocumentationFlagExactMatch: the flag counts only when it is exactly
// the string "true".
func TestDocumentationFlagExactMatch(t *testing.T) {
	s, _ := newTestService(t)

	for _, value := range []string{"True", "1", "yes", "false", ""} {
		resp := s.dispatch(get("/power", map[string]string{"documentation": value}))
		if resp.body != "power: unknown" {
			t.Errorf("documentation=%q: body = %q, want cached value", value, resp.body)
		}
	}
}

func TestRawRange(t *testing.T) {
	valid := []string{"0", "255", "27", "4"}
	invalid := []string{"-1", "256", "1000", "abc", "0x1b", "12.5"}

	for _, v := range valid {
		t.Run("valid/"+v, func(t *testing.T) {
			s, sink := newTestService(t)
			resp := s.dispatch(post("/raw", map[string]string{"raw": v}))
			if resp.body != "success" {
				t.Fatalf("raw=%s: body = %q, want success", v, resp.body)
			}
			n, _ := strconv.Atoi(v)
			if sent := sink.Sent(); len(sent) != 1 || sent[0] != byte(n) {
				t.Errorf("raw=%s: sink received %v", v, sent)
			}
			if s.Cache().Raw != v {
				t.Errorf("raw cache = %q, want %q", s.Cache().Raw, v)
			}
		})
	}

	for _, v := range invalid {
		t.Run("invalid/"+v, func(t *testing.T) {
			s, sink := newTestService(t)
			resp := s.dispatch(post("/raw", map[string]string{"raw": v}))
			if resp.body != "error: invalid argument type" {
				t.Errorf("raw=%s: body = %q, want invalid-type error", v, resp.body)
			}
			if n := len(sink.Sent()); n != 0 {
				t.Errorf("raw=%s: sink received %d codes, want 0", v, n)
			}
			if s.Cache().Raw != Unknown {
				t.Errorf("raw=%s: cache mutated to %q", v, s.Cache().Raw)
			}
		})
	}
}

// TestScenarioColorBlue: POST color=blue succeeds and the cached-state dump
// reflects it.
func TestScenarioColorBlue(t *testing.T) {
	s, _ := newTestService(t)

	resp := s.dispatch(post("/color", map[string]string{"color": "blue"}))
	if resp.body != "success" {
		t.Fatalf("POST /color = %q, want success", resp.body)
	}

	dump := s.dispatch(get("/cached-state", nil))
	if !strings.Contains(dump.body, "color: blue") {
		t.Errorf("cached-state missing %q:\n%s", "color: blue", dump.body)
	}
	if !strings.Contains(dump.body, "raw: 10") {
		t.Errorf("cached-state missing %q (blue transmits 0x0A):\n%s", "raw: 10", dump.body)
	}
}

// TestScenarioPowerMaybe: the invalid token error leaves power unknown.
func TestScenarioPowerMaybe(t *testing.T) {
	s, _ := newTestService(t)

	resp := s.dispatch(post("/power", map[string]string{"power": "maybe"}))
	if resp.body != "error: argument does not match expected" {
		t.Fatalf("POST /power = %q", resp.body)
	}
	if s.Cache().Power != Unknown {
		t.Errorf("power = %q, want unknown", s.Cache().Power)
	}
}

func TestNotFoundEcho(t *testing.T) {
	s, _ := newTestService(t)

	resp := s.dispatch(get("/unknown-path", map[string]string{"a": "1", "b": "2"}))
	if resp.status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.status)
	}
	for _, want := range []string{"URI: /unknown-path", "Method: GET", "Arguments: 2", " a: 1", " b: 2"} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("echo missing %q:\n%s", want, resp.body)
		}
	}

	// The URI field updates even for unmatched routes
	if s.Cache().URI != "/unknown-path" {
		t.Errorf("cache URI = %q, want /unknown-path", s.Cache().URI)
	}
}

// TestMethodNotRegistered: a known path with an unregistered method falls
// through to the 404 echo, matching per-method route registration.
func TestMethodNotRegistered(t *testing.T) {
	s, sink := newTestService(t)

	for _, uri := range []string{"/", "/routes", "/cached-state", "/moisture"} {
		resp := s.dispatch(post(uri, nil))
		if resp.status != http.StatusNotFound {
			t.Errorf("POST %s status = %d, want 404", uri, resp.status)
		}
	}
	if n := len(sink.Sent()); n != 0 {
		t.Errorf("sink received %d codes, want 0", n)
	}
}

func TestRootListing(t *testing.T) {
	s, _ := newTestService(t)

	root := s.dispatch(get("/", nil))
	routes := s.dispatch(get("/routes", nil))
	if root.body != routes.body {
		t.Error("/ and /routes listings differ")
	}
	for _, want := range []string{"/cached-state", "/raw", "/brightness", "/power", "/function", "/color", "/moisture"} {
		if !strings.Contains(root.body, want) {
			t.Errorf("route listing missing %s", want)
		}
	}
}

func TestMoistureReading(t *testing.T) {
	s, _ := newTestService(t)

	resp := s.dispatch(get("/moisture", nil))
	if resp.body != "moisture: 618" {
		t.Errorf("GET /moisture = %q, want %q", resp.body, "moisture: 618")
	}
}

// TestServiceOverTCP exercises the whole path through a real listener:
// accept, request parse, dispatch, response write.
func TestServiceOverTCP(t *testing.T) {
	sink := &hardware.SimIRSink{}
	s := NewService("127.0.0.1:0", sink, &fixedSensor{value: 512}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start(): %v", err)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
				if err := s.Update(); err != nil {
					t.Errorf("Update(): %v", err)
					return
				}
			}
		}
	}()

	base := "http://" + s.Addr()

	resp, err := http.Post(base+"/color", "application/x-www-form-urlencoded", strings.NewReader("color=blue"))
	if err != nil {
		t.Fatalf("POST /color: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "success" {
		t.Errorf("POST /color body = %q, want success", body)
	}

	resp, err = http.Get(base + "/cached-state")
	if err != nil {
		t.Fatalf("GET /cached-state: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "color: blue") {
		t.Errorf("cached-state over TCP missing color: blue:\n%s", body)
	}

	resp, err = http.Get(base + "/no-such-route")
	if err != nil {
		t.Fatalf("GET /no-such-route: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(string(body), "URI: /no-such-route") {
		t.Errorf("404 echo missing URI:\n%s", body)
	}

	close(done)
	<-stopped
	s.Stop()
	s.Stop() // idempotent

	if sent := sink.Sent(); len(sent) != 1 || sent[0] != 0x0A {
		t.Errorf("sink received %v, want [0x0A]", sent)
	}
}
