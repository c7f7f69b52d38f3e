// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package component

import "github.com/zclconf/go-cty/cty"

// Statement is one declaration statement replayed into a Resolver.
type Statement interface {
	// Call returns the name of the statement as written in the script, used in
	// error messages.
	Call() string
}

// InputDecl declares one positional input.
type InputDecl struct {
	Name string
}

// OutputDecl declares one emitted output.
type OutputDecl struct {
	Name string
}

// PublishDecl declares a publish target. When Args holds exactly one object
// or map value it becomes the target's options.
type PublishDecl struct {
	Name string
	Args []cty.Value
}

// UnknownDecl is any statement the declaration could not classify.
type UnknownDecl struct {
	Name string
}

func (s InputDecl) Call() string   { return "take \"" + s.Name + "\"" }
func (s OutputDecl) Call() string  { return "emit \"" + s.Name + "\"" }
func (s PublishDecl) Call() string { return "publish \"" + s.Name + "\"" }
func (s UnknownDecl) Call() string { return s.Name }
