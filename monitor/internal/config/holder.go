package config

import "sync/atomic"

// Holder publishes the current Config to concurrent readers.
type Holder struct {
	p atomic.Pointer[Config]
}

// NewHolder returns a Holder initialised with cfg.
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.p.Store(cfg)
	return h
}

// Get returns the current Config. Callers must treat it as read-only.
func (h *Holder) Get() *Config { return h.p.Load() }

// Set replaces the current Config.
func (h *Holder) Set(cfg *Config) { h.p.Store(cfg) }
