// Package script loads HCL scripts and drives their execution.
//
// A script is a set of top-level items evaluated in source order:
//
//	x = value(1)                       # a global
//	workflow "sum" { ... }             # a named, reusable workflow
//	workflow { ... }                   # the unnamed entry workflow
//	process "square" { ... }           # a process, compiled to a runtime task
//	include "lib.hcl" { ... }          # components of another script
//
// Inside a component, `take`, `emit` and `publish` blocks declare its calling
// contract, and a `main` (workflow) or `exec` (process) block holds the
// statements the component runs. Every registered component can be called
// from expressions by name and returns a bundle of its outputs.
//
// The session strategy decides what a declaration does. In module mode,
// declarations are registered and a standalone run invokes the entry
// component. In legacy mode, a process runs as soon as it is declared, reading
// its inputs from globals and writing its outputs back as globals, and the
// module features (`workflow`, `include`) are rejected.
package script
