package dataflow

import "github.com/zclconf/go-cty/cty"

// Options is the free-form configuration attached to a publish target.
type Options map[string]cty.Value

// OptionsFromValue converts an object or map value into Options. It reports
// false when v is not a known, non-null object or map.
func OptionsFromValue(v cty.Value) (Options, bool) {
	if !v.IsKnown() || v.IsNull() {
		return nil, false
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, false
	}
	opts := make(Options, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		k, val := it.Element()
		opts[k.AsString()] = val
	}
	return opts, true
}

// String returns the string option stored under key, or fallback when it is
// missing or not a string.
func (o Options) String(key, fallback string) string {
	v, ok := o[key]
	if !ok || !v.IsKnown() || v.IsNull() || !v.Type().Equals(cty.String) {
		return fallback
	}
	return v.AsString()
}

// Clone returns a shallow copy; cty values are immutable.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
