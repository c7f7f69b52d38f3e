package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// FunctionCallError returns the Go error a script function failed with, if
// one of diags was produced by a failing function call.
func FunctionCallError(diags hcl.Diagnostics) error {
	for _, diag := range diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](diag)
		if !ok {
			continue
		}
		if err := extra.FunctionCallError(); err != nil {
			return err
		}
	}
	return nil
}

// DiagnosticsError converts diags into an error. The error of a failing
// function call, when present, is kept in the chain so errors.As still finds
// it.
func DiagnosticsError(diags hcl.Diagnostics) error {
	if !diags.HasErrors() {
		return nil
	}
	if cause := FunctionCallError(diags); cause != nil {
		return &callError{diags: diags, cause: cause}
	}
	return diags
}

type callError struct {
	diags hcl.Diagnostics
	cause error
}

func (e *callError) Error() string { return e.diags.Error() }

func (e *callError) Unwrap() error { return e.cause }
