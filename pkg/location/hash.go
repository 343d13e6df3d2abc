package location

import (
	"net/url"
	"strings"
	"sync"
)

// Hash keeps the path in the fragment of a URL, the way a single page
// app does with hash routing.
type Hash struct {
	mu    sync.Mutex
	u     url.URL
	watch watchers
}

// NewHash wraps a copy of u.
func NewHash(u *url.URL) *Hash {
	h := &Hash{}
	if u != nil {
		h.u = *u
	}
	return h
}

// ParseHash parses raw and wraps the result.
func ParseHash(raw string) (*Hash, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewHash(u), nil
}

// Path returns the fragment as an absolute path.
func (h *Hash) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fragmentPath(h.u.Fragment)
}

// SetPath writes path into the fragment.
func (h *Hash) SetPath(path string) error {
	h.mu.Lock()
	h.u.Fragment = path
	h.mu.Unlock()
	return nil
}

// ReplacePath is SetPath; a URL has no history of its own.
func (h *Hash) ReplacePath(path string) error {
	return h.SetPath(path)
}

// SetURL replaces the whole URL, for example after the user edits the
// address. Watchers run when the fragment path changed.
func (h *Hash) SetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	h.mu.Lock()
	changed := fragmentPath(h.u.Fragment) != fragmentPath(u.Fragment)
	h.u = *u
	h.mu.Unlock()

	if changed {
		h.watch.notify()
	}
	return nil
}

// URL returns the current URL.
func (h *Hash) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.u.String()
}

// Watch registers fn to run when SetURL changes the path.
func (h *Hash) Watch(fn func()) {
	h.watch.add(fn)
}

func fragmentPath(fragment string) string {
	if !strings.HasPrefix(fragment, "/") {
		return "/" + fragment
	}
	return fragment
}
