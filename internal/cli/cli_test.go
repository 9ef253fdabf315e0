package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/display"
	"github.com/matzehuels/signboard/pkg/editor"
	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/shortlink"
)

// isolate points every XDG directory into the test's temp dir and clears
// SIGNBOARD_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{"SIGNBOARD_CACHE_BACKEND", "SIGNBOARD_CACHE_DIR", "SIGNBOARD_REDIS_ADDR", "SIGNBOARD_SCRIPT_DIR", "SIGNBOARD_BASE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

// execute runs the root command with args and returns what it wrote to
// its output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStreams(t, args...)
	return out, err
}

// executeStreams is execute that also returns the status output.
func executeStreams(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func readLayout(t *testing.T, path string) layout.DisplayConfig {
	t.Helper()
	cfg, err := layout.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return cfg
}

func TestLayoutFileWorkflow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lobby.json")

	mustExecute(t, "new", path)
	if _, err := execute(t, "new", path); err == nil {
		t.Error("new should refuse to overwrite")
	}

	mustExecute(t, "add", path, "image")
	mustExecute(t, "add", path, "image")
	cfg := readLayout(t, path)
	if len(cfg.Layout) != 2 {
		t.Fatalf("instances = %d, want 2", len(cfg.Layout))
	}
	a, b := cfg.Layout[0], cfg.Layout[1]
	if a.X != 0 || a.Y != 0 || a.W != 4 || a.H != 3 {
		t.Errorf("first image = %d,%d %dx%d, want 0,0 4x3", a.X, a.Y, a.W, a.H)
	}
	if b.X != 4 || b.Y != 0 {
		t.Errorf("second image at %d,%d, want first free spot 4,0", b.X, b.Y)
	}

	mustExecute(t, "set", path, a.ID, "url=https://example.com/logo.png", "fit=contain")
	cfg = readLayout(t, path)
	got := cfg.Layout[0].Config
	if got.String("url", "") != "https://example.com/logo.png" || got.String("fit", "") != "contain" {
		t.Errorf("config after set = %v", got)
	}
	if got.String("alt", "missing") != "" {
		t.Errorf("untouched key changed: alt = %q", got.String("alt", "missing"))
	}

	if _, err := execute(t, "set", path, a.ID, "url=ftp://nope"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid url error = %v, want INVALID_INPUT", err)
	}

	mustExecute(t, "remove", path, b.ID)
	if _, err := execute(t, "remove", path, b.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second remove error = %v, want NOT_FOUND", err)
	}
	if cfg = readLayout(t, path); len(cfg.Layout) != 1 {
		t.Errorf("instances after remove = %d, want 1", len(cfg.Layout))
	}
}

func TestAddAtPushesDown(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lobby.toml")
	mustExecute(t, "new", path)
	mustExecute(t, "add", path, "clock", "--at", "0,0")
	mustExecute(t, "add", path, "text", "--at", "1,0")

	cfg := readLayout(t, path)
	clock, text := cfg.Layout[0], cfg.Layout[1]
	if text.X != 1 || text.Y != 0 {
		t.Errorf("text at %d,%d, want 1,0", text.X, text.Y)
	}
	if clock.Y != text.Y+text.H {
		t.Errorf("clock y = %d, want pushed below text to %d", clock.Y, text.Y+text.H)
	}
}

func TestAddErrors(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lobby.json")
	mustExecute(t, "new", path)

	if _, err := execute(t, "add", path, "hologram"); !errors.Is(err, errors.ErrCodeUnknownWidgetType) {
		t.Errorf("unknown type error = %v, want UNKNOWN_WIDGET_TYPE", err)
	}
	if _, err := execute(t, "add", path, "clock", "--at", "x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad --at error = %v, want INVALID_INPUT", err)
	}
	if len(readLayout(t, path).Layout) != 0 {
		t.Error("failed add changed the file")
	}
}

func TestSetWithoutEditor(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lobby.json")
	mustExecute(t, "new", path)
	mustExecute(t, "add", path, "countdown")
	id := readLayout(t, path).Layout[0].ID

	_, err := execute(t, "set", path, id, "title=Launch")
	if err == nil || !strings.Contains(err.Error(), editor.NoOptionsMessage) {
		t.Errorf("error = %v, want %q", err, editor.NoOptionsMessage)
	}
}

func TestEncodeDecode(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lobby.json")
	mustExecute(t, "new", path, "--ticker")
	mustExecute(t, "add", path, "clock")

	token := strings.TrimSpace(mustExecute(t, "encode", path))
	cfg, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("encoded token does not decode: %v", err)
	}
	if !cfg.Equal(readLayout(t, path)) {
		t.Error("token does not round-trip the layout file")
	}

	url := strings.TrimSpace(mustExecute(t, "encode", path, "--url"))
	if !strings.HasSuffix(url, "/display?config="+token) {
		t.Errorf("url = %q", url)
	}

	out := filepath.Join(dir, "copy.toml")
	mustExecute(t, "decode", url, "-o", out)
	if !readLayout(t, out).Equal(cfg) {
		t.Error("decode -o did not reproduce the layout")
	}

	js := mustExecute(t, "decode", token)
	if !strings.Contains(js, `"tickerEnabled": true`) {
		t.Errorf("decode output missing ticker flag:\n%s", js)
	}
}

func TestDecodeInvalidTokenGivesDefault(t *testing.T) {
	isolate(t)
	out := mustExecute(t, "decode", "not-a-token", "--format", "toml")
	cfg, err := layout.Read(strings.NewReader(out), layout.FormatTOML)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if !cfg.Equal(layout.Default()) {
		t.Errorf("decode(bad) = %+v, want default", cfg)
	}
	if _, err := execute(t, "decode", "x", "--format", "yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
}

func TestDisplayCommand(t *testing.T) {
	dir := isolate(t)
	out := mustExecute(t, "display", "--width", "60", "--height", "16")
	if !strings.Contains(out, display.EmptyMessage) {
		t.Errorf("default display missing empty-state message:\n%s", out)
	}

	path := filepath.Join(dir, "lobby.json")
	mustExecute(t, "new", path)
	mustExecute(t, "add", path, "text")
	mustExecute(t, "set", path, readLayout(t, path).Layout[0].ID, "content=Welcome guests", "markdown=false")
	if out := mustExecute(t, "display", path); !strings.Contains(out, "Welcome guests") {
		t.Errorf("display of layout file missing widget text:\n%s", out)
	}
}

func TestWidgetsCommand(t *testing.T) {
	isolate(t)
	out := mustExecute(t, "widgets")
	for _, typ := range []string{"clock", "text", "image", "iframe", "map", "news-ticker", "countdown"} {
		if !strings.Contains(out, typ) {
			t.Errorf("widgets table missing %q", typ)
		}
	}
	if js := mustExecute(t, "widgets", "--json"); !strings.Contains(js, `"hasEditor": true`) {
		t.Errorf("widgets --json output:\n%s", js)
	}
}

func TestScriptedWidgets(t *testing.T) {
	dir := isolate(t)
	scripts := filepath.Join(dir, "widgets")
	os.MkdirAll(scripts, 0o755)
	os.WriteFile(filepath.Join(scripts, "motd.lua"), []byte(`
widget = { type = "motd", name = "Message of the day", default_w = 3, default_h = 1 }
function render(config, theme, cols, rows)
  return "motd!"
end
`), 0o644)
	cfgPath := filepath.Join(dir, "config.toml")
	os.WriteFile(cfgPath, []byte("[widgets]\nscript_dir = \""+filepath.ToSlash(scripts)+"\"\n"), 0o644)

	if out := mustExecute(t, "--config", cfgPath, "widgets"); !strings.Contains(out, "motd") {
		t.Errorf("scripted widget not listed:\n%s", out)
	}
}

func TestLinkCommand(t *testing.T) {
	isolate(t)
	token, _ := codec.Encode(layout.Default())

	url := strings.TrimSpace(mustExecute(t, "link", token))
	id := shortlink.ID(token)
	if !strings.HasSuffix(url, "/s/"+id) {
		t.Errorf("link = %q, want suffix /s/%s", url, id)
	}
	if got := strings.TrimSpace(mustExecute(t, "link", "--resolve", id)); got != token {
		t.Errorf("resolve = %q, want %q", got, token)
	}
	if _, err := execute(t, "link", "--resolve", "0000000000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown id error = %v", err)
	}
	if _, err := execute(t, "link", "garbage"); !errors.Is(err, errors.ErrCodeDecodeFailure) {
		t.Errorf("bad token error = %v", err)
	}
}

func TestLinkFailsWithoutCacheDir(t *testing.T) {
	isolate(t)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	token, _ := codec.Encode(layout.Default())

	if _, err := execute(t, "link", token); err == nil {
		t.Error("link without a cache dir succeeded, want error")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, "cache", appName)
	if got := strings.TrimSpace(mustExecute(t, "cache", "path")); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	mustExecute(t, "cache", "clear")
	token, _ := codec.Encode(layout.Default())
	mustExecute(t, "link", token)
	mustExecute(t, "cache", "clear")
	if _, err := execute(t, "link", "--resolve", shortlink.ID(token)); err == nil {
		t.Error("link survived cache clear")
	}
}

func TestCacheClearBackends(t *testing.T) {
	isolate(t)
	t.Setenv("SIGNBOARD_CACHE_BACKEND", "none")
	mustExecute(t, "cache", "clear")

	t.Setenv("SIGNBOARD_CACHE_BACKEND", "redis")
	if _, err := execute(t, "cache", "clear"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("clear redis error = %v, want INVALID_INPUT", err)
	}
	if got := strings.TrimSpace(mustExecute(t, "cache", "path")); !strings.HasPrefix(got, "redis://") {
		t.Errorf("cache path = %q, want redis URL", got)
	}
}

func TestStatusGoesToStderr(t *testing.T) {
	isolate(t)
	stdout, stderr, err := executeStreams(t, "decode", "garbage")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "Invalid token") {
		t.Errorf("stderr = %q, want invalid token warning", stderr)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Errorf("stdout = %q, want only JSON", stdout)
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want layout.Point
		ok   bool
	}{
		{"0,0", layout.Point{}, true},
		{"3, 5", layout.Point{X: 3, Y: 5}, true},
		{"3", layout.Point{}, false},
		{"-1,0", layout.Point{}, false},
		{"a,b", layout.Point{}, false},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parsePoint(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestTokenFromArg(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc_DEF-1", "abc_DEF-1"},
		{"  abc  ", "abc"},
		{"https://signs.example.com/display?config=abc", "abc"},
		{"/display?w=10&config=xyz", "xyz"},
	}
	for _, tt := range tests {
		if got := tokenFromArg(tt.in); got != tt.want {
			t.Errorf("tokenFromArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
