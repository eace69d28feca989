// Package logging wraps log/slog with per-module levels for tf96ctl.
//
// Each subsystem asks for its own logger once and keeps it:
//
//	logger := logging.GetLogger("protocol")
//	logger.Debug("tx", "line", "CA6")
//
// The module name is attached to every record and selects the level, so the
// wire traffic of the protocol module can be traced at debug while the rest
// stays at info:
//
//	[logging]
//	level = "info"
//	protocol = "debug"
//
//	[logging.modules]
//	http = "warn"
//
// Records go to stdout when it is attached, to journald when it is running,
// and always to an in-memory buffer. Journal fields are the upper-cased
// attribute keys:
//
//	journalctl -t tf96ctl MODULE=led PORT=3
//
// The buffer keeps the last 1000 entries with a sequence number. The API
// replays it to new /api/logs/stream clients, and SetLogCallback forwards
// live entries to the event bus. SetLevels changes levels in place when the
// config file is edited while serving.
package logging
