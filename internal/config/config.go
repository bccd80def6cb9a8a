package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	configDir  = ".config/sendtg"
	configFile = "config.toml"
)

// File is the persisted credential set. Empty fields are omitted on disk
// so a partially filled config stays readable.
type File struct {
	APIURL   string `toml:"api_url,omitempty"`
	BotToken string `toml:"bot_token,omitempty"`
	ChatID   string `toml:"chat_id,omitempty"`
}

// HasRequiredFields reports whether every credential is present.
func (f File) HasRequiredFields() bool {
	return strings.TrimSpace(f.APIURL) != "" &&
		strings.TrimSpace(f.BotToken) != "" &&
		strings.TrimSpace(f.ChatID) != ""
}

// Merge returns f with any non-empty field of over taking precedence.
func (f File) Merge(over File) File {
	if strings.TrimSpace(over.APIURL) != "" {
		f.APIURL = strings.TrimSpace(over.APIURL)
	}
	if strings.TrimSpace(over.BotToken) != "" {
		f.BotToken = strings.TrimSpace(over.BotToken)
	}
	if strings.TrimSpace(over.ChatID) != "" {
		f.ChatID = strings.TrimSpace(over.ChatID)
	}
	return f
}

// Path returns the config file location under the user's home directory.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load reads the config file. A missing file is not an error; the caller
// gets (nil, nil) and decides whether that is fatal.
func Load() (*File, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Save writes the config file, creating parent directories as needed.
// Blank fields are dropped rather than serialized as empty strings.
func Save(f File) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	trimmed := File{
		APIURL:   strings.TrimSpace(f.APIURL),
		BotToken: strings.TrimSpace(f.BotToken),
		ChatID:   strings.TrimSpace(f.ChatID),
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(trimmed); err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	return path, nil
}

// EnvOverlay picks up credential overrides from the environment. A .env
// file in the working directory is folded in first, without clobbering
// variables that are already exported.
func EnvOverlay() File {
	_ = godotenv.Load()
	return File{
		APIURL:   os.Getenv("SENDTG_API_URL"),
		BotToken: os.Getenv("SENDTG_BOT_TOKEN"),
		ChatID:   os.Getenv("SENDTG_CHAT_ID"),
	}
}

// RedactToken keeps the identifying prefix of a bot token and masks the
// secret remainder. Short values are fully hidden.
func RedactToken(token string) string {
	if len(token) <= 10 {
		return "REDACTED"
	}
	return token[:10] + strings.Repeat("*", 30)
}
