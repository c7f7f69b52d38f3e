// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import "fmt"

// ArityError is returned when the number of arguments does not match the
// number of declared inputs.
type ArityError struct {
	Component string
	Declared  int
	Received  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("component '%s' declares %d input(s) but was invoked with %d argument(s)", e.Component, e.Declared, e.Received)
}

// MissingOutputError is returned when a declared output or publish target has
// no bound variable, or resolves to an empty bundle.
type MissingOutputError struct {
	Component string
	Name      string
	Publish   bool
	Reason    string
}

func (e *MissingOutputError) Error() string {
	what := "output"
	if e.Publish {
		what = "publish target"
	}
	return fmt.Sprintf("component '%s': %s '%s' %s", e.Component, what, e.Name, e.Reason)
}

// AmbiguousOutputError is returned when a declared output resolves to a bundle
// with more than one channel.
type AmbiguousOutputError struct {
	Component string
	Name      string
	Size      int
}

func (e *AmbiguousOutputError) Error() string {
	return fmt.Sprintf("component '%s': output '%s' resolves to %d channels, expected exactly one", e.Component, e.Name, e.Size)
}

// InvalidPublishTargetError is returned when a publish target is bound to a
// value that is neither a channel nor a bundle.
type InvalidPublishTargetError struct {
	Component string
	Name      string
	Type      string
}

func (e *InvalidPublishTargetError) Error() string {
	return fmt.Sprintf("component '%s': publish target '%s' must be a channel or a bundle, got %s", e.Component, e.Name, e.Type)
}
