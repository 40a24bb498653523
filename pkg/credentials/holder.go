// Package credentials holds the optional BLS API registration key.
//
// A Holder is created once (usually from the BLS_API_KEY environment
// variable) and passed to the client through its Config. Set overrides the
// environment value for every later request that does not carry its own
// key; Unset clears the key entirely rather than restoring the environment
// value. Keys are opaque: the BLS API rejects bad keys at request time.
package credentials

import (
	"os"
	"sync"
)

// EnvVar is the environment variable that supplies the default API key.
const EnvVar = "BLS_API_KEY"

// Holder stores an optional API key.
type Holder struct {
	mu  sync.RWMutex
	key string
	set bool
}

// New returns a Holder containing key. An empty key means "no key".
func New(key string) *Holder {
	return &Holder{key: key, set: key != ""}
}

// FromEnv returns a Holder initialised from BLS_API_KEY.
func FromEnv() *Holder {
	return New(os.Getenv(EnvVar))
}

// Set stores an explicit key.
func (h *Holder) Set(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = key
	h.set = true
}

// Unset clears the key. The environment value is not restored.
func (h *Holder) Unset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = ""
	h.set = false
}

// Current returns the active key and whether one is present.
// A nil Holder has no key.
func (h *Holder) Current() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key, h.set
}
