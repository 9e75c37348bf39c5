// Package logger provides a thin wrapper around zap offering:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName),
//   - level parsing and configuration utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
package logger
