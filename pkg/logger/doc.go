// Package logger builds the slog.Logger the rest of the module logs through.
//
// New assembles a JSON or text handler with optional static attributes and
// context extractors, so request-scoped values (request id, user id) attach
// to every record automatically:
//
//	log := logger.New(
//		logger.WithProduction("trackkit"),
//		logger.WithContextValue("request_id", requestIDKey),
//	)
//	logger.SetAsDefault(log)
//
// The attr helpers keep attribute keys consistent across packages; a
// session id logged from pkg/session and pkg/activity uses the same key.
package logger
