// Package hydrate decodes serialized snapshots into state tables, with hooks
// for callers that need to normalise payloads on the way in.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context carries identifiers tied to a snapshot payload.
type Context struct {
	Slot string
}

// PreHook lets callers mutate or normalise the raw payload before decoding.
type PreHook func(Context, []byte) ([]byte, error)

// PostHook lets callers adjust or validate the decoded table after decoding.
type PostHook func(Context, map[string]any) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts serialized snapshots into state tables.
type Decoder struct {
	preHooks     []PreHook
	postHooks    []PostHook
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding, preserving
// numeric precision as json.Number instead of float64.
func WithUseNumber() DecoderOption {
	return func(d *Decoder) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig(configure func(*json.Decoder)) DecoderOption {
	return func(d *Decoder) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into a state table applying configured hooks.
func (d *Decoder) Decode(ctx Context, payload []byte) (map[string]any, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("hydrate: payload is empty for slot %q", ctx.Slot)
	}

	current := payload
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for slot %q failed: %w", ctx.Slot, err)
		}
		if next != nil {
			current = next
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(current))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	var table map[string]any
	if err := decoder.Decode(&table); err != nil {
		return nil, fmt.Errorf("hydrate: decode slot %q: %w", ctx.Slot, err)
	}
	if table == nil {
		table = map[string]any{}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, table); err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for slot %q failed: %w", ctx.Slot, err)
		}
	}

	return table, nil
}
