// Package config persists Telegram credentials.
//
// Credentials live in a TOML file at ~/.config/sendtg/config.toml and can
// be overridden per invocation by SENDTG_* environment variables (a .env
// file is honored) and command-line flags, in that order of increasing
// precedence. The package also hosts the interactive setup wizard and the
// token-redacting config printer behind --setup and --show-config.
package config
