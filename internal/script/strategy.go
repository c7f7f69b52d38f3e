package script

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
)

// Strategy decides what declaring a component or an include does.
type Strategy interface {
	Name() Mode
	Workflow(ctx context.Context, s *Script, def *component.Definition) error
	Process(ctx context.Context, s *Script, def *component.Definition) error
	Include(ctx context.Context, s *Script, inc *Include) error
}

func strategyFor(mode Mode) (Strategy, error) {
	switch mode {
	case ModeModule:
		return ModuleStrategy{}, nil
	case ModeLegacy:
		return LegacyStrategy{}, nil
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

// ModuleStrategy registers every declaration and resolves includes.
type ModuleStrategy struct{}

// Name implements Strategy.
func (ModuleStrategy) Name() Mode { return ModeModule }

// Workflow implements Strategy.
func (ModuleStrategy) Workflow(ctx context.Context, s *Script, def *component.Definition) error {
	return register(ctx, s, def)
}

// Process implements Strategy.
func (ModuleStrategy) Process(ctx context.Context, s *Script, def *component.Definition) error {
	return register(ctx, s, def)
}

// Include implements Strategy.
func (ModuleStrategy) Include(ctx context.Context, s *Script, inc *Include) error {
	return s.session.include(ctx, s, inc)
}

func register(ctx context.Context, s *Script, def *component.Definition) error {
	if _, builtin := s.session.builtins[def.Name()]; builtin {
		return fmt.Errorf("%s: component name '%s' shadows a builtin function", def.Origin(), def.Name())
	}
	if err := s.registry.Register(ctx, def); err != nil {
		return fmt.Errorf("%s: %w", def.Origin(), err)
	}
	return nil
}

// LegacyStrategy runs each process at the point it is declared.
type LegacyStrategy struct{}

// Name implements Strategy.
func (LegacyStrategy) Name() Mode { return ModeLegacy }

// Workflow implements Strategy.
func (LegacyStrategy) Workflow(_ context.Context, _ *Script, def *component.Definition) error {
	return &ModuleFeatureDisabledError{Feature: "workflow", Origin: def.Origin().String()}
}

// Include implements Strategy.
func (LegacyStrategy) Include(_ context.Context, _ *Script, inc *Include) error {
	return &ModuleFeatureDisabledError{Feature: "include", Origin: inc.Range.String()}
}

// Process implements Strategy. Inputs are read from the globals of the same
// name; every output becomes a global.
func (LegacyStrategy) Process(ctx context.Context, s *Script, def *component.Definition) error {
	logger := ctxlog.FromContext(ctx)

	inputs := def.Inputs()
	args := make([]cty.Value, 0, len(inputs))
	for _, name := range inputs {
		v, ok := s.Global(name)
		if !ok {
			return fmt.Errorf("%s: process '%s' input '%s' is not defined at script level", def.Origin(), def.Name(), name)
		}
		args = append(args, v)
	}

	logger.Debug("Running process eagerly.", "process", def.Name(), "inputs", inputs)
	out, err := s.session.engine.Invoke(ctx, def, args)
	if err != nil {
		return err
	}
	for _, name := range out.Names() {
		ch, _ := out.Get(name)
		s.setGlobal(ctx, name, dataflow.ChannelVal(ch))
	}
	return nil
}
