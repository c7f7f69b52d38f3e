package publish

import (
	"fmt"
	"math/big"

	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
)

// ToInterface converts a cty.Value to plain Go data for encoders that do not
// know cty. Channels and bundles are rendered by name.
func ToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if ch, ok := dataflow.AsChannel(val); ok {
		return ch.String(), nil
	}
	if b, ok := dataflow.AsBundle(val); ok {
		return fmt.Sprintf("bundle%v", b.Names()), nil
	}

	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			elem, err := ToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = elem
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := ToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// Payload is the transport-neutral form of a record.
type Payload struct {
	Component string `json:"component"`
	Target    string `json:"target"`
	Channel   uint64 `json:"channel"`
	Values    []any  `json:"values"`
}

// NewPayload converts rec into a Payload.
func NewPayload(rec dataflow.Record) (Payload, error) {
	p := Payload{Component: rec.Component, Target: rec.Target, Channel: rec.Channel, Values: make([]any, 0, len(rec.Values))}
	for i, v := range rec.Values {
		elem, err := ToInterface(v)
		if err != nil {
			return Payload{}, fmt.Errorf("value %d of target '%s': %w", i, rec.Target, err)
		}
		p.Values = append(p.Values, elem)
	}
	return p, nil
}
