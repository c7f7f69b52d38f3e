// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package engine invokes component definitions.
//
// One call to Invoke walks a fixed sequence: bind the positional arguments to
// the declared inputs in a fresh binding, push a stack frame, run the body,
// collect the declared outputs into a bundle, then hand every declared publish
// target to the channel runtime. The stack frame is released on every exit
// path, so a failing nested call leaves the caller's view of "what is
// executing now" intact.
//
// Outputs come in three shapes and are normalised into one channel each:
//
//   - a channel is used as-is;
//   - a bundle must hold exactly one channel, which is used;
//   - any other value is promoted into a completed single-use channel.
//
// Publish targets are stricter: they accept a channel or a bundle (one publish
// per channel) and reject plain values.
package engine
