package cache

import "strings"

// Key types reported to cache hooks.
const (
	KeyTypeLink   = "link"
	KeyTypeRender = "render"
)

// Keyer builds cache keys.
type Keyer interface {
	// LinkKey is the key of a short link id.
	LinkKey(id string) string

	// RenderKey is the key of a rendered display for token on surface at
	// the given size.
	RenderKey(token, surface string, width, height int) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LinkKey implements Keyer.
func (DefaultKeyer) LinkKey(id string) string {
	return KeyTypeLink + ":" + id
}

// RenderKey implements Keyer. Tokens are hashed so keys stay short.
func (DefaultKeyer) RenderKey(token, surface string, width, height int) string {
	return hashKey(KeyTypeRender, token, surface, width, height)
}

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// installations can share one Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. An empty prefix returns
// inner unchanged; a missing trailing colon is added.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LinkKey implements Keyer.
func (k *ScopedKeyer) LinkKey(id string) string {
	return k.prefix + k.inner.LinkKey(id)
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(token, surface string, width, height int) string {
	return k.prefix + k.inner.RenderKey(token, surface, width, height)
}

// KeyType returns the key type of a key built by any Keyer, for hooks.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeLink, KeyTypeRender} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "other"
}
