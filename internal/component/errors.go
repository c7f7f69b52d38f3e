// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package component

import "fmt"

// UnknownDeclarationError is returned when a declaration contains a statement
// that is neither an input, an output nor a publish target.
type UnknownDeclarationError struct {
	Component string
	Call      string
}

func (e *UnknownDeclarationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("unknown declaration '%s' in entry workflow", e.Call)
	}
	return fmt.Sprintf("unknown declaration '%s' in component '%s'", e.Call, e.Component)
}
