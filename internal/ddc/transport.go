package ddc

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultDelay is the minimum pause after every DDC/CI command.
	// Back-to-back commands are a known source of silent failures on
	// slow monitor firmware.
	DefaultDelay = 40 * time.Millisecond

	// DefaultRetries bounds how often a transient failure is retried.
	DefaultRetries = 2
)

// Value is one VCP feature reading.
type Value struct {
	Current uint32 `json:"current"`
	Max     uint32 `json:"max"`
}

// Transport wraps a Device with the retry and pacing policy. Transient
// failures (ErrTimeout, ErrCommFailure) are retried up to the configured
// bound; ErrUnsupported and ErrInvalidValue surface immediately.
type Transport struct {
	dev     Device
	delay   time.Duration
	retries int
	sleep   func(time.Duration)
}

// Option configures a Transport.
type Option func(*Transport)

// WithDelay overrides the inter-command delay.
func WithDelay(d time.Duration) Option {
	return func(t *Transport) { t.delay = d }
}

// WithRetries overrides the transient-failure retry bound.
func WithRetries(n int) Option {
	return func(t *Transport) { t.retries = n }
}

// withSleep replaces the pacing sleep, for tests.
func withSleep(fn func(time.Duration)) Option {
	return func(t *Transport) { t.sleep = fn }
}

// NewTransport builds a Transport over dev with the default policy.
func NewTransport(dev Device, opts ...Option) *Transport {
	t := &Transport{
		dev:     dev,
		delay:   DefaultDelay,
		retries: DefaultRetries,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Device returns the wrapped device.
func (t *Transport) Device() Device { return t.dev }

// Read queries the current and maximum value of a feature.
func (t *Transport) Read(code uint8) (Value, error) {
	var v Value
	err := t.attempt(func() error {
		cur, max, err := t.dev.GetVCPFeature(code)
		if err != nil {
			return err
		}
		v = Value{Current: cur, Max: max}
		return nil
	})
	if err != nil {
		return Value{}, fmt.Errorf("read vcp 0x%02X: %w", code, err)
	}
	return v, nil
}

// Write sets a feature to value. max is the feature's maximum from a
// prior read or capabilities query; pass 0 when unknown, which falls
// back to the byte range [0, 255]. Out-of-range values fail with
// ErrInvalidValue before the device is touched. Retries re-issue the
// identical write: some monitors treat certain writes as toggles, so the
// retry must never vary the payload.
func (t *Transport) Write(code uint8, value, max uint32) error {
	limit := max
	if limit == 0 {
		limit = 255
	}
	if value > limit {
		return fmt.Errorf("write vcp 0x%02X: value %d exceeds maximum %d: %w",
			code, value, limit, ErrInvalidValue)
	}

	err := t.attempt(func() error {
		return t.dev.SetVCPFeature(code, value)
	})
	if err != nil {
		return fmt.Errorf("write vcp 0x%02X value %d: %w", code, value, err)
	}
	return nil
}

// Capabilities fetches the raw capabilities string with the same retry
// policy as feature access.
func (t *Transport) Capabilities() (string, error) {
	var raw string
	err := t.attempt(func() error {
		s, err := t.dev.CapabilitiesString()
		if err != nil {
			return err
		}
		raw = s
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read capabilities: %w", err)
	}
	return raw, nil
}

// attempt runs op, pacing after every command and retrying transient
// failures up to the bound.
func (t *Transport) attempt(op func() error) error {
	var err error
	for try := 0; try <= t.retries; try++ {
		err = op()
		t.sleep(t.delay)
		if err == nil {
			return nil
		}
		if !transient(err) {
			return err
		}
	}
	return err
}

func transient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrCommFailure)
}
