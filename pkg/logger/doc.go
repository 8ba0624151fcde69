// Package logger provides a slog factory and shared attribute helpers so
// every component logs the same keys for the same concepts.
//
// # Usage
//
//	log := logger.New(logger.WithJSONFormatter(), logger.WithLevel(slog.LevelInfo))
//
//	log.Error("failed to confirm user",
//	    logger.UserID(userID),
//	    logger.Error(err),
//	    logger.Component("credential"),
//	)
//
// Attribute helpers return an empty slog.Attr for nil input, which slog
// silently drops, so call sites never need nil checks.
package logger
