package portal

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"

	"github.com/greenshed/plantnode/internal/logging"
	"github.com/greenshed/plantnode/internal/netconfig"
	"go.uber.org/zap"
)

const (
	// DefaultSSID is the fixed SSID of the configuration access point.
	DefaultSSID = "Wifi_Plant_Node_AP"

	// DefaultPassphrase is the default pre-shared key for the
	// configuration access point.
	DefaultPassphrase = "password"
)

// AccessPoint controls the node's access-point mode.
type AccessPoint interface {
	StartAccessPoint(ssid, passphrase string) error
	StopAccessPoint() error
}

// Portal is the captive configuration portal: a temporary access point
// exposing a web form for entering new WiFi credentials. It is the
// station supervisor's recovery path of last resort.
type Portal struct {
	ap         AccessPoint
	ssid       string
	passphrase string
	listenAddr string

	mu   sync.Mutex
	addr string
}

// New creates a portal hosting the given access point. listenAddr is where
// the credential form is served (":80" on the AP subnet in production).
func New(ap AccessPoint, ssid, passphrase, listenAddr string) *Portal {
	if ssid == "" {
		ssid = DefaultSSID
	}
	if passphrase == "" {
		passphrase = DefaultPassphrase
	}
	return &Portal{
		ap:         ap,
		ssid:       ssid,
		passphrase: passphrase,
		listenAddr: listenAddr,
	}
}

// Addr returns the portal's bound listen address while Run is active,
// or "" otherwise.
func (p *Portal) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Run brings up the configuration access point and serves the credential
// form until a user submits a network, blocking however long that takes.
// The only other exit is context cancellation. The access point is torn
// down before Run returns.
func (p *Portal) Run(ctx context.Context) (netconfig.Credentials, error) {
	if err := p.ap.StartAccessPoint(p.ssid, p.passphrase); err != nil {
		return netconfig.Credentials{}, fmt.Errorf("failed to start access point: %w", err)
	}
	defer func() {
		if err := p.ap.StopAccessPoint(); err != nil {
			logging.Warn("failed to stop access point", zap.Error(err))
		}
	}()

	ln, err := net.Listen("tcp", p.listenAddr)
	if err != nil {
		return netconfig.Credentials{}, fmt.Errorf("failed to listen on %s: %w", p.listenAddr, err)
	}
	p.mu.Lock()
	p.addr = ln.Addr().String()
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.addr = ""
		p.mu.Unlock()
	}()

	logging.LogPortalEvent("portal_open",
		zap.String("ssid", p.ssid),
		zap.String("addr", ln.Addr().String()),
	)

	submitted := make(chan netconfig.Credentials, 1)
	srv := &http.Server{Handler: p.handler(submitted)}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	defer srv.Close()

	select {
	case creds := <-submitted:
		logging.LogPortalEvent("credentials_received", zap.String("ssid", creds.SSID))
		return creds, nil
	case <-ctx.Done():
		logging.LogPortalEvent("portal_cancelled")
		return netconfig.Credentials{}, ctx.Err()
	case err := <-serveErr:
		return netconfig.Credentials{}, fmt.Errorf("portal server failed: %w", err)
	}
}

func (p *Portal) handler(submitted chan<- netconfig.Credentials) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Captive-portal style: every unknown path lands on the form
		if r.URL.Path != "/" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		p.renderForm(w, "")
	})

	mux.HandleFunc("/save", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			p.renderForm(w, "could not read form submission")
			return
		}
		ssid := r.PostFormValue("ssid")
		if ssid == "" {
			p.renderForm(w, "network name is required")
			return
		}
		creds := netconfig.Credentials{
			SSID:       ssid,
			Passphrase: r.PostFormValue("passphrase"),
		}
		fmt.Fprintln(w, "Credentials saved. The node will now try to connect.")
		// Buffered channel: only the first submission wins
		select {
		case submitted <- creds:
		default:
		}
	})

	return mux
}

func (p *Portal) renderForm(w http.ResponseWriter, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, struct {
		SSID  string
		Error string
	}{SSID: p.ssid, Error: errMsg}); err != nil {
		logging.Warn("failed to render portal form", zap.Error(err))
	}
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>Plant Node Setup</title></head>
<body>
<h1>Plant Node WiFi Setup</h1>
<p>Configure the network this node should join. You are connected to the
temporary access point <b>{{.SSID}}</b>.</p>
{{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
<form method="POST" action="/save">
  <label>Network name (SSID): <input type="text" name="ssid"></label><br>
  <label>Passphrase: <input type="password" name="passphrase"></label><br>
  <input type="submit" value="Save">
</form>
</body>
</html>
`))
