// Package logging provides structured logging for posthub.
//
// It wraps log/slog with a JSON handler. Records carry the mailbox owner and
// the operation being performed so that a delivery can be followed from the
// staging write to the publish rename:
//
//	logger := logging.NopLogger()
//	op := logger.WithOperation("send").WithUser("alice")
//	op.Info("message delivered", "message", "6712AB01.MSG")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"message delivered","operation":"send","op_id":"2b0c...","user":"alice","message":"6712AB01.MSG"}
//
// # Destinations
//
// [NewLogger] writes to a file through a [RotatingWriter], or to stderr when
// the path is empty. [NewWriterLogger] writes to any io.Writer and is what
// the --verbose flag and the tests use. [NopLogger] discards everything and
// is the default when logging is disabled.
//
// # Rotation
//
// Rotated files are named posthub.log.1, posthub.log.2, and so on, where .1
// is the most recent. With compression enabled they become posthub.log.1.gz.
//
// # Configuration
//
//	logging:
//	  enabled: true
//	  level: debug
//	  file: /var/log/posthub.log
//	  max_size_mb: 10
//	  max_backups: 3
//	  compress: false
package logging
