package script

import "fmt"

// ModuleFeatureDisabledError is returned when a script uses a module-only
// feature while the session runs in legacy mode.
type ModuleFeatureDisabledError struct {
	Feature string
	Origin  string
}

func (e *ModuleFeatureDisabledError) Error() string {
	return fmt.Sprintf("%s: '%s' requires module mode, the session runs in legacy mode", e.Origin, e.Feature)
}

// IncludeCycleError is returned when a script includes itself, directly or
// through other scripts.
type IncludeCycleError struct {
	Chain []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("include cycle: %v", e.Chain)
}
