package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/script"
)

// Run loads the configured script, invokes its entry and waits until every
// published value has been delivered.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.", "script", a.config.ScriptPath)

	defer func() {
		if cerr := a.router.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	session, err := script.NewSession(ctx, script.Options{
		Mode:      script.Mode(a.config.Mode),
		Entry:     a.config.Entry,
		Publisher: a.router,
		Observer:  entryObserver{},
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.session = session

	a.diagnosticsServer()
	defer func() {
		if cerr := a.closeDiagnosticsServer(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	a.logger.Info("🚀 Running script...", "path", a.config.ScriptPath, "mode", session.Mode())
	result, err := session.Run(ctx, a.config.ScriptPath)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	if result.Entry == nil {
		a.logger.Warn("Script declares no entry component, only globals were evaluated.")
	} else {
		a.logger.Info("🏁 Execution finished.", "entry", result.Entry.Label(), "outputs", result.Outputs.Names())
	}
	a.logger.Debug("App.Run method finished.", "globals", len(result.Globals.Type().AttributeTypes()))
	return nil
}
