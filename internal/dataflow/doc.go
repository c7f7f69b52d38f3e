// Package dataflow is the in-memory channel runtime that component bodies
// wire their work into.
//
// The engine never looks inside a channel. It only needs to tell channels and
// bundles apart from plain values, create single-use channels for emitted
// plain values, and hand channels over to the publishing subsystem. Everything
// else about a channel (how values arrive, who reads them) belongs to the code
// that produced it.
//
// Channels and bundles cross the HCL boundary as cty capsule values, so a
// script can pass them around like any other value:
//
//	numbers = channel(1, 2, 3)
//	result  = double(numbers)
//	doubled = out(result, "doubled")
package dataflow
