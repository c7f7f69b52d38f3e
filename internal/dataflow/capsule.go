package dataflow

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

var (
	// ChannelType is the cty capsule type that carries a *Channel.
	ChannelType = cty.Capsule("channel", reflect.TypeOf((*Channel)(nil)).Elem())

	// BundleType is the cty capsule type that carries a *Bundle.
	BundleType = cty.Capsule("bundle", reflect.TypeOf((*Bundle)(nil)).Elem())
)

// ChannelVal wraps a channel into a cty value.
func ChannelVal(ch *Channel) cty.Value {
	return cty.CapsuleVal(ChannelType, ch)
}

// BundleVal wraps a bundle into a cty value.
func BundleVal(b *Bundle) cty.Value {
	return cty.CapsuleVal(BundleType, b)
}

// AsChannel unwraps a channel capsule. It reports false for anything else,
// including null and unknown values.
func AsChannel(v cty.Value) (*Channel, bool) {
	if !v.IsKnown() || v.IsNull() || !v.Type().Equals(ChannelType) {
		return nil, false
	}
	return v.EncapsulatedValue().(*Channel), true
}

// AsBundle unwraps a bundle capsule.
func AsBundle(v cty.Value) (*Bundle, bool) {
	if !v.IsKnown() || v.IsNull() || !v.Type().Equals(BundleType) {
		return nil, false
	}
	return v.EncapsulatedValue().(*Bundle), true
}
