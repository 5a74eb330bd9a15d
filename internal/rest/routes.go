package rest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/greenshed/plantnode/internal/command"
	"github.com/greenshed/plantnode/internal/logging"
)

// Plain-text bodies shared by every route. Validation failures ship with
// HTTP 200; only unmatched routes use a non-200 status. This mirrors the
// controller's legacy wire protocol and is deliberately preserved.
const (
	bodySuccess        = "success"
	bodyArgExpected    = "error: argument expected"
	bodyArgNoMatch     = "error: argument does not match expected"
	bodyArgInvalidType = "error: invalid argument type"
	bodySensorUnknown  = "moisture: unknown"
	documentationArg   = "documentation"
	documentationValue = "true"
)

// request is one parsed client interaction. Arguments merge URL query
// parameters and urlencoded form fields, matching how the original
// firmware's web server exposed them.
type request struct {
	method string
	uri    string
	args   map[string]string
}

// arg returns the argument value, or "" when absent. An empty value is
// indistinguishable from a missing argument, as in the original protocol.
func (r *request) arg(name string) string {
	return r.args[name]
}

func (r *request) wantsDocumentation() bool {
	return r.arg(documentationArg) == documentationValue
}

// response is what a handler produced for one request.
type response struct {
	status int
	body   string
}

func ok(body string) response {
	return response{status: http.StatusOK, body: body}
}

type handlerFunc func(*Service, *request) response

// route couples a path with its handler and allowed methods. A method not
// in the set falls through to the diagnostic 404, the same as an
// unregistered path.
type route struct {
	handle  handlerFunc
	methods map[string]bool
}

func getOnly(h handlerFunc) route {
	return route{handle: h, methods: map[string]bool{http.MethodGet: true}}
}

func getAndPost(h handlerFunc) route {
	return route{handle: h, methods: map[string]bool{http.MethodGet: true, http.MethodPost: true}}
}

func newRoutes() map[string]route {
	routes := map[string]route{
		"/":             getOnly((*Service).handleRoot),
		"/routes":       getOnly((*Service).handleRoot),
		"/cached-state": getOnly((*Service).handleCachedState),
		"/moisture":     getOnly((*Service).handleMoisture),
		"/raw":          getAndPost((*Service).handleRaw),
	}
	for _, cat := range command.Categories() {
		routes["/"+string(cat)] = getAndPost(categoryHandler(cat))
	}
	return routes
}

// dispatch routes one request and updates the cache URI. The URI field
// updates on every serviced request, including unmatched ones; it is the
// only cache field a failed request may touch.
func (s *Service) dispatch(req *request) response {
	resp := s.route(req)
	s.cache.URI = req.uri
	return resp
}

func (s *Service) route(req *request) response {
	r, found := s.routes[req.uri]
	if !found || !r.methods[req.method] {
		return s.handleNotFound(req)
	}
	return r.handle(s, req)
}

// handleRoot serves the static route listing for "/" and "/routes".
func (s *Service) handleRoot(_ *request) response {
	return ok(routeListing)
}

// handleCachedState dumps the state cache. The dump reports what this
// service last accepted, not proof of the controller's actual state.
func (s *Service) handleCachedState(_ *request) response {
	body := serviceBanner +
		"Cached State:\n" +
		"\traw: " + s.cache.Raw + "\n" +
		"\tbrightness: " + s.cache.Brightness + "\n" +
		"\tpower: " + s.cache.Power + "\n" +
		"\tfunction: " + s.cache.Function + "\n" +
		"\tcolor: " + s.cache.Color + "\n" +
		"\turi: " + s.cache.URI + "\n"
	return ok(body)
}

// handleMoisture reports the latest soil moisture reading.
func (s *Service) handleMoisture(req *request) response {
	if req.wantsDocumentation() {
		return ok(moistureDocumentation)
	}
	if s.moisture == nil {
		return ok(bodySensorUnknown)
	}
	v, err := s.moisture.Read()
	if err != nil {
		logging.Warn("moisture read failed: " + err.Error())
		return ok(bodySensorUnknown)
	}
	return ok(fmt.Sprintf("moisture: %d", v))
}

// handleRaw accepts a direct IR byte code, validated by numeric range
// rather than token-table membership.
func (s *Service) handleRaw(req *request) response {
	if req.method == http.MethodPost {
		raw := req.arg("raw")
		if raw == "" {
			return ok(bodyArgExpected)
		}
		code, err := strconv.Atoi(raw)
		if err != nil || code < 0 || code > 255 {
			return ok(bodyArgInvalidType)
		}
		s.transmit(byte(code))
		s.publish("raw", raw, byte(code))
		return ok(bodySuccess)
	}

	if req.wantsDocumentation() {
		return ok(rawDocumentation)
	}
	return ok("raw: " + s.cache.Raw)
}

// categoryHandler builds the handler for one token-table route. All four
// category routes share this logic; only the table differs.
func categoryHandler(cat command.Category) handlerFunc {
	name := string(cat)
	return func(s *Service, req *request) response {
		if req.method == http.MethodPost {
			token := req.arg(name)
			if token == "" {
				return ok(bodyArgExpected)
			}
			code, valid := command.Lookup(cat, token)
			if !valid {
				return ok(bodyArgNoMatch)
			}
			*s.cache.field(name) = token
			s.transmit(byte(code))
			s.publish(name, token, byte(code))
			logging.LogCommand(name, token, byte(code))
			return ok(bodySuccess)
		}

		if req.wantsDocumentation() {
			return ok(categoryDocs[name])
		}
		return ok(name + ": " + *s.cache.field(name))
	}
}

// handleNotFound echoes the request back as a diagnostic aid. Arguments
// are listed in sorted order to keep the echo deterministic.
func (s *Service) handleNotFound(req *request) response {
	body := "404: Not Found\n\n"
	body += "URI: " + req.uri
	body += "\nMethod: " + req.method
	body += fmt.Sprintf("\nArguments: %d\n", len(req.args))

	names := make([]string, 0, len(req.args))
	for name := range req.args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		body += " " + name + ": " + req.args[name] + "\n"
	}

	return response{status: http.StatusNotFound, body: body}
}

// transmit forwards a code to the IR sink and records it in the raw field.
// The sink is fire-and-forget; a transmit error is logged and the cache
// still records the attempt, matching the controller's no-ack reality.
func (s *Service) transmit(code byte) {
	if err := s.sink.Send(code); err != nil {
		logging.Warn("IR transmit failed: " + err.Error())
	}
	s.cache.Raw = strconv.Itoa(int(code))
}

func (s *Service) publish(category, token string, code byte) {
	if s.events != nil {
		s.events.PublishCommand(category, token, code)
	}
}
