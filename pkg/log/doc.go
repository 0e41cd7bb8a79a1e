/*
Package log provides structured logging for catalogd using zerolog.

The package wraps a single global zerolog.Logger, initialized once via
Init, plus helper constructors for component- and entity-scoped child
loggers.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("catalogd starting")

	reconcilerLog := log.WithComponent("reconciler")
	reconcilerLog.Info().Msg("reconciler started")

	dbLog := log.WithDatabase(reconcilerLog, "sales")
	dbLog.Debug().Msg("database loaded")

	svcLog := log.WithCatalogServiceID(reconcilerLog, serviceID.String())
	svcLog.Warn().Msg("catalog service identity changed")

Context loggers compose: WithTable(WithDatabase(log.WithComponent("facade"), db), table)
produces a logger carrying component, db, and table fields on every
subsequent entry.
*/
package log
