package dataflow

import "fmt"

// Bundle is an ordered, named collection of channels. It is what one
// component invocation returns, and a script may pass it on to another
// component as an ordinary argument.
type Bundle struct {
	names    []string
	channels map[string]*Channel
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{channels: make(map[string]*Channel)}
}

// Add appends a named channel. Names are unique within a bundle.
func (b *Bundle) Add(name string, ch *Channel) error {
	if ch == nil {
		return fmt.Errorf("bundle entry '%s': channel is nil", name)
	}
	if _, exists := b.channels[name]; exists {
		return fmt.Errorf("bundle already has an entry named '%s'", name)
	}
	b.names = append(b.names, name)
	b.channels[name] = ch
	return nil
}

// Size returns the number of channels in the bundle.
func (b *Bundle) Size() int { return len(b.names) }

// Names returns the entry names in insertion order.
func (b *Bundle) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Channels returns the channels in insertion order.
func (b *Bundle) Channels() []*Channel {
	out := make([]*Channel, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, b.channels[name])
	}
	return out
}

// Get returns the channel stored under name.
func (b *Bundle) Get(name string) (*Channel, bool) {
	ch, ok := b.channels[name]
	return ch, ok
}
