// Package logger provides a singleton zap logger with context scoping.
//
// # Design
//
//   - Singleton: one process-wide instance built by Init().
//   - Context scoping: the HTTP host stores a request-scoped logger (request
//     id, connector id) in the context; connector code retrieves it with
//     From(ctx) and falls back to the singleton when none is present.
//   - Environments: "prod" emits JSON, anything else a colored console.
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Info("token endpoint responded", logger.Status(resp.StatusCode))
//
// Client secrets, authorization codes and tokens must never be logged.
package logger
