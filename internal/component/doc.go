// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package component turns a raw declaration into an immutable Definition.
//
// # Two phases
//
// A declaration says two different things: what the component's calling
// contract is (its `take`, `emit` and `publish` statements) and what it does
// when called (its body). Construction keeps those apart:
//
//  1. The declaration is cloned and the clone is replayed, statement by
//     statement, into a Resolver. The Resolver only records names and publish
//     options; nothing in the body runs.
//
//  2. The original declaration is compiled into a Body, the executable payload
//     together with its source text.
//
// The contract is known before the component is ever invoked, so callers can
// check arity, wire outputs and report free variables up front.
//
// # Renaming
//
// A Definition never changes after construction. Including a module under an
// alias builds a new Definition with Rename, which shares the Body handle of
// the original.
package component
