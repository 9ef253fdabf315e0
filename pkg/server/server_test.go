package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/signboard/pkg/cache"
	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/display"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/shortlink"
	"github.com/matzehuels/signboard/pkg/widget"
	"github.com/matzehuels/signboard/pkg/widgets"
)

func newTestServer(t *testing.T, withLinks bool) *httptest.Server {
	t.Helper()
	reg := widget.NewRegistry()
	widgets.RegisterBuiltins(reg)

	opts := Options{
		BaseURL:  "https://signs.example.com/",
		Registry: reg,
		Logger:   log.New(io.Discard),
	}
	if withLinks {
		c, err := cache.NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		opts.Links = shortlink.NewStore(c)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func sampleToken(t *testing.T) string {
	t.Helper()
	cfg := layout.Default()
	cfg.TickerEnabled = true
	cfg.Layout = []layout.Instance{{
		ID: "w1", Type: "text", X: 0, Y: 0, W: 4, H: 2,
		Config: widget.Config{"content": "Hello lobby", "markdown": false},
	}}
	token, err := codec.Encode(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New without registry should fail")
	}
}

func TestDisplayHTML(t *testing.T) {
	ts := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/display?config="+sampleToken(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(FallbackHeader) != "" {
		t.Error("valid token flagged as fallback")
	}
	for _, want := range []string{"Hello lobby", `class="ticker"`, "repeat(7, 1fr)"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDisplayFallback(t *testing.T) {
	ts := newTestServer(t, false)

	for _, q := range []string{"", "?config=", "?config=garbage!!", "?config=AAAA"} {
		resp, body := get(t, ts.URL+"/display"+q)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", q, resp.StatusCode)
		}
		if !strings.Contains(body, display.EmptyMessage) {
			t.Errorf("%s: default config not rendered", q)
		}
		if resp.Header.Get(FallbackHeader) != "true" {
			t.Errorf("%s: fallback header missing", q)
		}
	}
}

func TestDisplayText(t *testing.T) {
	ts := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/display.txt?w=120&h=36&config="+sampleToken(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(body, "\x1b[") {
		t.Error("text surface contains escape sequences")
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) != 36 {
		t.Errorf("lines = %d, want 36", len(lines))
	}
	if !strings.Contains(body, "Hello lobby") {
		t.Error("widget content missing")
	}
}

func TestWidgets(t *testing.T) {
	ts := newTestServer(t, false)

	_, body := get(t, ts.URL+"/api/widgets")
	var infos []WidgetInfo
	if err := json.Unmarshal([]byte(body), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != len(widgets.Builtins()) {
		t.Fatalf("widgets = %d, want %d", len(infos), len(widgets.Builtins()))
	}
	byType := map[string]WidgetInfo{}
	for _, i := range infos {
		byType[i.Type] = i
	}
	if img := byType["image"]; !img.HasEditor || img.DefaultW != 4 || img.DefaultH != 3 {
		t.Errorf("image = %+v", img)
	}
	if cd := byType["countdown"]; cd.HasEditor {
		t.Error("countdown should have no editor")
	}
}

func TestEncodeDecode(t *testing.T) {
	ts := newTestServer(t, false)

	in := `{"layout":[{"id":"a","type":"clock","x":10,"y":0,"w":4,"h":2,"config":{}}],"tickerEnabled":false}`
	resp, err := http.Post(ts.URL+"/api/encode", "application/json", strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encode status = %d", resp.StatusCode)
	}
	var enc EncodeResponse
	json.NewDecoder(resp.Body).Decode(&enc)
	if enc.Token == "" || !strings.HasPrefix(enc.URL, "https://signs.example.com/display?config=") {
		t.Errorf("encode = %+v", enc)
	}
	if len(enc.Warnings) != 1 {
		t.Errorf("warnings = %v, want one out-of-bounds warning", enc.Warnings)
	}

	_, body := get(t, ts.URL+"/api/decode?config="+enc.Token)
	var dec DecodeResponse
	if err := json.Unmarshal([]byte(body), &dec); err != nil {
		t.Fatal(err)
	}
	if dec.Fallback || len(dec.Config.Layout) != 1 || dec.Config.Layout[0].X != 10 {
		t.Errorf("decode = %+v", dec)
	}

	_, body = get(t, ts.URL+"/api/decode?config=broken")
	dec = DecodeResponse{}
	json.Unmarshal([]byte(body), &dec)
	if !dec.Fallback || !dec.Config.Equal(layout.Default()) {
		t.Errorf("broken decode = %+v, want default with fallback", dec)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	ts := newTestServer(t, false)

	for _, in := range []string{"not json", `{"layout":[{"id":"","type":"clock"}]}`} {
		resp, err := http.Post(ts.URL+"/api/encode", "application/json", strings.NewReader(in))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", in, resp.StatusCode)
		}
	}
}

func TestShortLinks(t *testing.T) {
	ts := newTestServer(t, true)
	token := sampleToken(t)

	body, _ := json.Marshal(LinkRequest{Token: token})
	resp, err := http.Post(ts.URL+"/api/links", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var link LinkResponse
	json.NewDecoder(resp.Body).Decode(&link)
	if link.ID != shortlink.ID(token) || link.URL != "https://signs.example.com/s/"+link.ID {
		t.Errorf("link = %+v", link)
	}

	r, err := noRedirect().Get(ts.URL + "/s/" + link.ID)
	if err != nil {
		t.Fatal(err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusFound || r.Header.Get("Location") != "/display?config="+token {
		t.Errorf("redirect = %d %q", r.StatusCode, r.Header.Get("Location"))
	}

	r, _ = noRedirect().Get(ts.URL + "/s/0000000000")
	r.Body.Close()
	if r.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", r.StatusCode)
	}
}

func TestShortLinkRejectsBadToken(t *testing.T) {
	ts := newTestServer(t, true)
	body, _ := json.Marshal(LinkRequest{Token: "not-a-token"})
	resp, err := http.Post(ts.URL+"/api/links", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestShortLinksDisabled(t *testing.T) {
	ts := newTestServer(t, false)
	resp, _ := get(t, ts.URL+"/s/0123456789")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDecodeCache(t *testing.T) {
	reg := widget.NewRegistry()
	s, _ := New(Options{Registry: reg, DecodeCacheSize: 2, Logger: log.New(io.Discard)})
	token := sampleToken(t)

	a, ok := s.decode(token)
	if !ok || s.decoded.Len() != 1 {
		t.Fatalf("decode ok=%v len=%d", ok, s.decoded.Len())
	}
	a.Layout[0].Config["content"] = "mutated"
	b, _ := s.decode(token)
	if b.Layout[0].Config["content"] == "mutated" {
		t.Error("cached config shared with caller")
	}

	s.decode("x")
	s.decode("y")
	if s.decoded.Len() != 2 {
		t.Errorf("cache len = %d, want bound 2", s.decoded.Len())
	}
}

func TestConcurrentRenders(t *testing.T) {
	ts := newTestServer(t, false)
	token := sampleToken(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(ts.URL + "/display.txt?config=" + token)
			if err != nil {
				t.Error(err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
}

func TestListenAndServeShutdown(t *testing.T) {
	reg := widget.NewRegistry()
	s, _ := New(Options{Addr: "127.0.0.1:0", Registry: reg, Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
