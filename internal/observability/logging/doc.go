// Package logging builds the application's log/slog loggers and carries
// request-scoped loggers through contexts.
//
//	logger := logging.NewLogger(os.Stdout)
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("serving page")
//	}
package logging
