// Package cli parses the sendtg command line and resolves credentials.
//
// Flags mirror a short-option styled sender tool: -m attaches media (and
// is repeatable), -C sets a shared caption, the positional argument is
// the message text. Credentials come from the config file, SENDTG_*
// environment variables and flags, each layer overriding the last.
package cli
