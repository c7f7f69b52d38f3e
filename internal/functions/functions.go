// Package functions provides the functions every script expression can call:
// the channel builtins, env and a selection of the go-cty standard library.
package functions

import (
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Channels is the part of the channel runtime the builtins depend on.
type Channels interface {
	Create(singleUse bool) *dataflow.Channel
	Bind(ch *dataflow.Channel, v cty.Value) error
}

// Builtins returns a fresh function table. Callers may add to it.
func Builtins(channels Channels) map[string]function.Function {
	return map[string]function.Function{
		"channel": channelFunc(channels),
		"value":   valueFunc(channels),
		"bundle":  bundleFunc(channels),
		"out":     outFunc(),
		"env":     envFunc(),

		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"concat":     stdlib.ConcatFunc,
		"floor":      stdlib.FloorFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"keys":       stdlib.KeysFunc,
		"length":     stdlib.LengthFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"merge":      stdlib.MergeFunc,
		"min":        stdlib.MinFunc,
		"range":      stdlib.RangeFunc,
		"split":      stdlib.SplitFunc,
		"upper":      stdlib.UpperFunc,
		"values":     stdlib.ValuesFunc,
	}
}

// channel(v...) returns a completed queue channel holding the arguments.
func channelFunc(channels Channels) function.Function {
	return function.New(&function.Spec{
		Description: "Returns a completed queue channel holding the given values in order.",
		VarParam: &function.Parameter{
			Name:      "values",
			Type:      cty.DynamicPseudoType,
			AllowNull: true,
		},
		Type: function.StaticReturnType(dataflow.ChannelType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			ch := channels.Create(false)
			for _, v := range args {
				if err := ch.Send(v); err != nil {
					return cty.NilVal, err
				}
			}
			ch.Close()
			return dataflow.ChannelVal(ch), nil
		},
	})
}

// value(v) returns a single-use channel bound to v.
func valueFunc(channels Channels) function.Function {
	return function.New(&function.Spec{
		Description: "Returns a single-use channel bound to the given value.",
		Params: []function.Parameter{
			{Name: "value", Type: cty.DynamicPseudoType, AllowNull: true},
		},
		Type: function.StaticReturnType(dataflow.ChannelType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			ch := channels.Create(true)
			if err := channels.Bind(ch, args[0]); err != nil {
				return cty.NilVal, err
			}
			return dataflow.ChannelVal(ch), nil
		},
	})
}

// bundle({...}) builds a bundle from an object; entries follow the sorted
// attribute names. Plain values are promoted the same way value() does.
func bundleFunc(channels Channels) function.Function {
	return function.New(&function.Spec{
		Description: "Builds a bundle of named channels from an object.",
		Params: []function.Parameter{
			{Name: "channels", Type: cty.DynamicPseudoType},
		},
		Type: function.StaticReturnType(dataflow.BundleType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			obj := args[0]
			if !obj.Type().IsObjectType() && !obj.Type().IsMapType() {
				return cty.NilVal, function.NewArgErrorf(0, "must be an object, got %s", obj.Type().FriendlyName())
			}

			b := dataflow.NewBundle()
			for it := obj.ElementIterator(); it.Next(); {
				k, v := it.Element()
				ch, ok := dataflow.AsChannel(v)
				if !ok {
					ch = channels.Create(true)
					if err := channels.Bind(ch, v); err != nil {
						return cty.NilVal, err
					}
				}
				if err := b.Add(k.AsString(), ch); err != nil {
					return cty.NilVal, err
				}
			}
			return dataflow.BundleVal(b), nil
		},
	})
}

// out(b, name) returns one channel of a bundle.
func outFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Returns the named channel of a bundle.",
		Params: []function.Parameter{
			{Name: "bundle", Type: dataflow.BundleType},
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(dataflow.ChannelType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			b, _ := dataflow.AsBundle(args[0])
			name := args[1].AsString()
			ch, ok := b.Get(name)
			if !ok {
				return cty.NilVal, function.NewArgErrorf(1, "bundle has no channel %q; it holds %v", name, b.Names())
			}
			return dataflow.ChannelVal(ch), nil
		},
	})
}
