package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/najahiiii/telebot-send/internal/config"
)

// Options is the parsed command line.
type Options struct {
	Setup      bool
	ShowConfig bool
	Version    bool
	Check      bool

	APIURL   string
	BotToken string
	ChatID   string

	Media      []string
	Spoiler    bool
	NoGroup    bool
	AsFile     bool
	Caption    string
	ButtonText string
	ButtonURL  string
	Silent     bool
	ThreadID   int64

	Message string
}

// ErrHelp is returned when the user asked for usage output; the caller
// should exit cleanly without treating it as a failure.
var ErrHelp = pflag.ErrHelp

// underscore spellings are accepted as aliases of the hyphenated flags.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "no_group":
		name = "no-group"
	case "as_file":
		name = "as-file"
	case "button_text":
		name = "button-text"
	case "button_url":
		name = "button-url"
	case "thread_id":
		name = "thread-id"
	case "show_config":
		name = "show-config"
	}
	return pflag.NormalizedName(name)
}

// Parse reads the command line. args excludes the program name.
func Parse(args []string) (*Options, error) {
	opts := &Options{}

	flags := pflag.NewFlagSet("sendtg", pflag.ContinueOnError)
	flags.SetNormalizeFunc(normalizeFlags)
	flags.SortFlags = false

	flags.BoolVar(&opts.Setup, "setup", false, "Interactive config writer; exit after saving.")
	flags.BoolVar(&opts.ShowConfig, "show-config", false, "Print current config contents and exit.")
	flags.StringVarP(&opts.APIURL, "api_url", "a", "", "Override the Telegram API base URL.")
	flags.StringVarP(&opts.BotToken, "bot_token", "t", "", "Override the bot token.")
	flags.StringVarP(&opts.ChatID, "chat_id", "c", "", "Override the target chat ID.")
	flags.StringArrayVarP(&opts.Media, "media", "m", nil, "Attach a file to send as media; repeatable.")
	flags.BoolVar(&opts.Spoiler, "spoiler", false, "Flag media as spoiler.")
	flags.BoolVar(&opts.NoGroup, "no-group", false, "Send media one by one instead of an album.")
	flags.BoolVarP(&opts.AsFile, "as-file", "F", false, "Send media as documents.")
	flags.StringVarP(&opts.Caption, "caption", "C", "", "Caption to reuse across media.")
	flags.StringVar(&opts.ButtonText, "button-text", "", "Inline button label.")
	flags.StringVar(&opts.ButtonURL, "button-url", "", "URL that the inline button opens.")
	flags.BoolVar(&opts.Silent, "silent", false, "Disable notifications for the message.")
	flags.BoolVar(&opts.Check, "check", false, "Check connectivity and credentials only.")
	flags.Int64Var(&opts.ThreadID, "thread-id", 0, "Target message thread ID for forum topics.")
	flags.BoolVarP(&opts.Version, "version", "v", false, "Print version information and exit.")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	rest := flags.Args()
	if len(rest) > 1 {
		return nil, fmt.Errorf("expected at most one message argument, got %d", len(rest))
	}
	if len(rest) == 1 {
		opts.Message = rest[0]
	}

	return opts, nil
}

// ResolveCredentials fills in API URL, bot token and chat ID from the
// config file and SENDTG_* environment variables, with flag values taking
// highest precedence. Modes that need no credentials (--setup,
// --show-config, --version) skip resolution.
func (o *Options) ResolveCredentials() error {
	if o.Setup || o.ShowConfig || o.Version {
		return nil
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	stored, err := config.Load()
	if err != nil {
		return err
	}

	merged := config.File{}
	if stored != nil {
		merged = *stored
	}
	merged = merged.Merge(config.EnvOverlay())
	merged = merged.Merge(config.File{
		APIURL:   o.APIURL,
		BotToken: o.BotToken,
		ChatID:   o.ChatID,
	})

	if !merged.HasRequiredFields() {
		if stored == nil {
			return fmt.Errorf("configuration not found at %s; run `sendtg --setup` first", path)
		}
		return fmt.Errorf("configuration at %s is missing required fields; run `sendtg --setup` to populate it", path)
	}

	o.APIURL = merged.APIURL
	o.BotToken = merged.BotToken
	o.ChatID = merged.ChatID
	return nil
}

// Validate rejects option combinations that cannot be acted on.
func (o *Options) Validate() error {
	if o.Setup || o.ShowConfig || o.Version || o.Check {
		return nil
	}
	if len(o.Media) == 0 && o.Message == "" {
		return errors.New("nothing to send: provide a message or --media")
	}
	if (o.ButtonText == "") != (o.ButtonURL == "") {
		return errors.New("--button-text and --button-url must be used together")
	}
	return nil
}
