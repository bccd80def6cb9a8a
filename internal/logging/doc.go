// Package logging provides a simple leveled logging interface for the
// sendtg command line tool, backed by zerolog's console writer.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The log level is configured via the LOG_LEVEL environment variable;
// DEBUG=1 forces debug output. Log lines go to stderr so they never
// interleave with the upload progress bar on stdout.
package logging
