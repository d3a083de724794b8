// Package device implements the attribute-resolution engine over one
// SNMP-managed device.
//
// A Device owns a per-instance cache, a resolved metadata registry for its
// class, and a shared Session collaborator. Callers request attributes by
// symbolic name; the engine maps the name to an OID through the registry,
// fetches scalars with a single GET or walks table columns with iterative
// GETNEXT, pushes raw values through the transform pipeline, and caches the
// display values. Once an attribute is loaded it is never re-queried until
// an explicit Reload or ClearCache.
//
// Basic Usage:
//
//	dev, err := device.New(map[string]any{
//		"target":       "192.0.2.1",
//		"community":    "public",
//		"auto_specify": true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	descr, err := dev.GetScalar("descr")
//	speeds, err := dev.GetTable("i_speed")
//
// Configuration keys consumed by the device layer: "class", "auto_specify",
// "debug", "bigint" and "retry_nosuch". Every other key passes through
// verbatim to session construction.
package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/geekxflood/snmpinfo/classify"
	"github.com/geekxflood/snmpinfo/logging"
	"github.com/geekxflood/snmpinfo/munge"
	"github.com/geekxflood/snmpinfo/registry"
	"github.com/geekxflood/snmpinfo/session"
)

// Device is one instance of the attribute engine bound to a device class
// and a session.
type Device struct {
	class string
	reg   *registry.Resolved
	sess  session.Session
	cache *store
	log   logging.Logger

	classes *registry.Registry
	rules   *classify.Ruleset

	ownSession  bool
	specified   bool
	retryNoSuch bool
	mopts       munge.Options

	errMu   sync.Mutex
	lastErr error
}

// Option adjusts a Device before its class is resolved and its session is
// opened.
type Option func(*Device)

// WithSession reuses a pre-built session instead of opening one from the
// configuration map. The caller keeps ownership; Close will not close it.
func WithSession(s session.Session) Option {
	return func(d *Device) {
		d.sess = s
		d.ownSession = false
	}
}

// WithLogger sets the logger. The default discards everything unless the
// "debug" configuration key is set, which installs a debug-level stderr
// logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRegistry resolves classes against a private registry instead of
// registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(d *Device) {
		if r != nil {
			d.classes = r
		}
	}
}

// WithRules replaces the classifier ruleset used by Classify, Specify and
// auto-specialization.
func WithRules(rs *classify.Ruleset) Option {
	return func(d *Device) {
		if rs != nil {
			d.rules = rs
		}
	}
}

// New constructs a device from a configuration map.
//
// Construction resolves the class metadata (memoized process-wide per
// class), opens or adopts a session, and, when "auto_specify" is set,
// performs at most one classifier-driven re-instantiation under the more
// specific class discovered from the live device.
func New(conf map[string]any, opts ...Option) (*Device, error) {
	d := &Device{
		class:       "generic",
		cache:       newStore(),
		log:         logging.Nop(),
		classes:     registry.Default,
		rules:       classify.DefaultRules(),
		retryNoSuch: true,
	}

	sessConf := make(map[string]any, len(conf))
	for k, v := range conf {
		sessConf[k] = v
	}

	if class := getStringValue(conf, "class"); class != "" {
		d.class = class
	}
	autoSpecify := false
	if b := getBoolValue(conf, "auto_specify"); b != nil {
		autoSpecify = *b
	}
	if b := getBoolValue(conf, "bigint"); b != nil {
		d.mopts.BigInt = *b
	}
	if b := getBoolValue(conf, "retry_nosuch"); b != nil {
		d.retryNoSuch = *b
	}
	debug := false
	if b := getBoolValue(conf, "debug"); b != nil {
		debug = *b
	}
	for _, key := range []string{"class", "auto_specify", "bigint", "retry_nosuch", "debug"} {
		delete(sessConf, key)
	}

	if debug {
		logger, _, err := logging.New(logging.Config{Level: logging.LevelDebug, Output: "stderr"})
		if err == nil {
			d.log = logger
		}
	}

	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("class", d.class)

	reg, err := d.classes.Resolve(d.class)
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}
	d.reg = reg

	if d.sess == nil {
		s, err := session.New(sessConf)
		if err != nil {
			return nil, fmt.Errorf("device: %w", err)
		}
		d.sess = s
		d.ownSession = true
	}

	if autoSpecify {
		return d.Specify()
	}
	return d, nil
}

// Class returns the device's class identifier.
func (d *Device) Class() string { return d.class }

// Session exposes the underlying session collaborator.
func (d *Device) Session() session.Session { return d.sess }

// Close releases the session if this device opened it. Sessions adopted
// through WithSession stay open; they belong to the caller.
func (d *Device) Close() error {
	if !d.ownSession || d.sess == nil {
		return nil
	}
	return d.sess.Close()
}

// ClearCache drops every cached value and loaded marker, forcing the next
// access of each attribute back to the network.
func (d *Device) ClearCache() {
	d.cache.clear()
}

// LastError returns and clears the instance-scoped last error. Nil when no
// operation has failed since the previous read.
func (d *Device) LastError() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	err := d.lastErr
	d.lastErr = nil
	return err
}

// PeekError returns the last error without clearing it.
func (d *Device) PeekError() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.lastErr
}

func (d *Device) record(err error) {
	d.errMu.Lock()
	d.lastErr = err
	d.errMu.Unlock()
}

// Classify inspects the two bootstrap attributes, the layers bitmask and
// the system description, and returns the most specific applicable class
// identifier. It does not change this device.
func (d *Device) Classify() (string, error) {
	layers, _ := d.bootstrapString("layers")
	descr, _ := d.bootstrapString("descr")

	class, err := d.rules.Classify(layers, descr)
	if err != nil {
		return "", err
	}
	d.log.Debug("classified device", "layers", layers, "result", class)
	return class, nil
}

// Specify classifies the device and, when a more specific class applies,
// returns a new device under that class sharing this one's session and
// settings. Specialization is one-shot: a device that already went through
// specialization returns itself, and an unclassifiable device stays on its
// current class.
func (d *Device) Specify() (*Device, error) {
	if d.specified {
		return d, nil
	}
	d.specified = true

	class, err := d.Classify()
	if err != nil {
		if errors.Is(err, classify.ErrUnclassifiable) {
			d.log.Debug("device unclassifiable, keeping class")
			return d, nil
		}
		return nil, err
	}
	if class == d.class {
		return d, nil
	}

	reg, err := d.classes.Resolve(class)
	if err != nil {
		// The ruleset can name classes a trimmed registry does not
		// carry; the generic metadata still works.
		d.log.Warn("specialized class unavailable, keeping class", "wanted", class, "error", err)
		return d, nil
	}

	next := &Device{
		class:       class,
		reg:         reg,
		sess:        d.sess,
		cache:       newStore(),
		log:         d.log.With("class", class),
		classes:     d.classes,
		rules:       d.rules,
		ownSession:  d.ownSession,
		specified:   true,
		retryNoSuch: d.retryNoSuch,
		mopts:       d.mopts,
	}
	d.ownSession = false
	d.log.Debug("specialized device", "from", d.class, "to", class)
	return next, nil
}

// bootstrapString fetches a scalar for classification, flattening absence
// and failure into an empty string.
func (d *Device) bootstrapString(attr string) (string, bool) {
	v, err := d.GetScalar(attr)
	if err != nil || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Configuration helper functions for type-safe value extraction.

func getStringValue(m map[string]any, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBoolValue(m map[string]any, key string) *bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return &b
		}
	}
	return nil
}
