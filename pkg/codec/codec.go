// Package codec turns a display configuration into a compact, URL-safe
// token and back.
//
// # Token format
//
// A token is the raw-deflate compressed JSON form of a DisplayConfig,
// encoded with unpadded base64url. It contains only [A-Za-z0-9_-] and can
// be dropped into a query string without escaping. JSON object keys are
// emitted in sorted order, so equal configurations produce equal tokens.
//
// # Decoding
//
// Decoding is all-or-nothing. A token that is empty, truncated, not valid
// base64/deflate/JSON, or structurally wrong yields a DECODE_FAILURE and
// callers substitute [layout.Default] wholesale. Within a well-formed
// token, absent optional fields fall back to per-field defaults:
//
//	x, y           0 (any integer; off-grid cells are clipped when shown)
//	w, h           1 (at least 1)
//	config         {}
//	theme.*        layout.DefaultTheme.*
//	tickerEnabled  false
//
// Unknown widget types are kept as-is; only the display surface treats
// them specially.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/observability"
	"github.com/matzehuels/signboard/pkg/widget"
)

// MaxDecodedSize bounds the inflated size of a token.
const MaxDecodedSize = 1 << 20

var encoding = base64.RawURLEncoding

// Encode serializes c into a token. It rejects configurations that Decode
// would refuse: bad or duplicate ids, empty types and sizes below 1.
func Encode(c layout.DisplayConfig) (string, error) {
	if err := checkEncodable(c); err != nil {
		return "", err
	}
	data, err := json.Marshal(normalize(c))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "marshal display config")
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create compressor")
	}
	if _, err := zw.Write(data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress display config")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress display config")
	}
	token := encoding.EncodeToString(buf.Bytes())
	observability.Codec().OnEncode(len(token))
	return token, nil
}

// Decode parses a token. Any failure is reported as DECODE_FAILURE and no
// partial configuration is returned.
func Decode(token string) (layout.DisplayConfig, error) {
	c, err := decode(token)
	observability.Codec().OnDecode(len(token), err == nil)
	return c, err
}

func decode(token string) (layout.DisplayConfig, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return layout.DisplayConfig{}, errors.New(errors.ErrCodeDecodeFailure, "empty token")
	}

	raw, err := encoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return layout.DisplayConfig{}, errors.Wrap(errors.ErrCodeDecodeFailure, err, "invalid token encoding")
	}

	zr := flate.NewReader(bytes.NewReader(raw))
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, MaxDecodedSize+1))
	if err != nil {
		return layout.DisplayConfig{}, errors.Wrap(errors.ErrCodeDecodeFailure, err, "invalid token compression")
	}
	if len(data) > MaxDecodedSize {
		return layout.DisplayConfig{}, errors.New(errors.ErrCodeDecodeFailure, "token expands beyond %d bytes", MaxDecodedSize)
	}

	c, err := parse(data)
	if err != nil {
		return layout.DisplayConfig{}, errors.Wrap(errors.ErrCodeDecodeFailure, err, "invalid token structure")
	}
	return c, nil
}

// DecodeOrDefault decodes token, substituting the built-in default
// configuration on any failure. ok reports whether the token was used.
func DecodeOrDefault(token string) (c layout.DisplayConfig, ok bool) {
	c, err := Decode(token)
	if err != nil {
		return layout.Default(), false
	}
	return c, true
}

// parse reads a DisplayConfig from JSON, applying per-field defaults.
func parse(data []byte) (layout.DisplayConfig, error) {
	if !gjson.ValidBytes(data) {
		return layout.DisplayConfig{}, fmt.Errorf("not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return layout.DisplayConfig{}, fmt.Errorf("top level is not an object")
	}

	c := layout.Default()

	if v := root.Get("tickerEnabled"); v.Exists() {
		if !isBool(v) {
			return layout.DisplayConfig{}, fmt.Errorf("tickerEnabled is not a boolean")
		}
		c.TickerEnabled = v.Bool()
	}

	if v := root.Get("theme"); v.Exists() {
		if !v.IsObject() {
			return layout.DisplayConfig{}, fmt.Errorf("theme is not an object")
		}
		var err error
		if c.Theme, err = parseTheme(v); err != nil {
			return layout.DisplayConfig{}, err
		}
	}

	if v := root.Get("layout"); v.Exists() {
		if !v.IsArray() {
			return layout.DisplayConfig{}, fmt.Errorf("layout is not an array")
		}
		for i, item := range v.Array() {
			inst, err := parseInstance(item)
			if err != nil {
				return layout.DisplayConfig{}, fmt.Errorf("layout[%d]: %w", i, err)
			}
			c.Layout = append(c.Layout, inst)
		}
	}

	if err := layout.Validate(c); err != nil {
		return layout.DisplayConfig{}, err
	}
	return c, nil
}

func parseTheme(v gjson.Result) (widget.Theme, error) {
	t := layout.DefaultTheme
	fields := []struct {
		key string
		dst *string
	}{
		{"background", &t.Background},
		{"primary", &t.Primary},
		{"accent", &t.Accent},
	}
	for _, f := range fields {
		r := v.Get(f.key)
		if !r.Exists() {
			continue
		}
		if r.Type != gjson.String {
			return widget.Theme{}, fmt.Errorf("theme.%s is not a string", f.key)
		}
		*f.dst = r.String()
	}
	return t, nil
}

func parseInstance(v gjson.Result) (layout.Instance, error) {
	if !v.IsObject() {
		return layout.Instance{}, fmt.Errorf("not an object")
	}

	id, typ := v.Get("id"), v.Get("type")
	if id.Type != gjson.String || typ.Type != gjson.String {
		return layout.Instance{}, fmt.Errorf("id and type must be strings")
	}

	inst := layout.Instance{
		ID:     id.String(),
		Type:   typ.String(),
		W:      1,
		H:      1,
		Config: widget.Config{},
	}

	ints := []struct {
		key  string
		dst  *int
		size bool
	}{
		{"x", &inst.X, false},
		{"y", &inst.Y, false},
		{"w", &inst.W, true},
		{"h", &inst.H, true},
	}
	for _, f := range ints {
		r := v.Get(f.key)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if r.Type != gjson.Number || r.Num != float64(int(r.Num)) {
			return layout.Instance{}, fmt.Errorf("%s is not an integer", f.key)
		}
		if f.size && int(r.Num) < 1 {
			return layout.Instance{}, fmt.Errorf("%s=%d below 1", f.key, int(r.Num))
		}
		*f.dst = int(r.Num)
	}

	if r := v.Get("config"); r.Exists() && r.Type != gjson.Null {
		if !r.IsObject() {
			return layout.Instance{}, fmt.Errorf("config is not an object")
		}
		if m, ok := r.Value().(map[string]any); ok {
			inst.Config = widget.Config(m).Clone()
		}
	}
	return inst, nil
}

func checkEncodable(c layout.DisplayConfig) error {
	if err := layout.Validate(c); err != nil {
		return err
	}
	for _, inst := range c.Layout {
		if inst.W < 1 || inst.H < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "instance %q has size %dx%d", inst.ID, inst.W, inst.H)
		}
	}
	return nil
}

func isBool(r gjson.Result) bool {
	return r.Type == gjson.True || r.Type == gjson.False
}

// normalize makes sure the encoded form never carries nil slices/maps so
// that an encoded empty layout decodes back to an empty layout.
func normalize(c layout.DisplayConfig) layout.DisplayConfig {
	return c.Clone()
}
