// Package logger builds the application slog.Logger.
//
// The handler decorator injects context attributes per record, which is
// how the current tenant id ends up on every log line:
//
//	log := logger.New(
//		logger.WithProduction("tenancy"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// Level and format can also come from the environment through Config
// and NewFromConfig.
package logger
