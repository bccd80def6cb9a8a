package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Setup runs the interactive config writer. Values already present in
// seed (typically command-line overrides) are accepted without prompting;
// everything else is read from in. A blank answer keeps the current value
// when one exists, and re-prompts otherwise.
func Setup(in io.Reader, out io.Writer, seed File) (string, error) {
	existing, err := Load()
	if err != nil {
		return "", err
	}
	current := File{}
	if existing != nil {
		current = *existing
	}

	reader := bufio.NewReader(in)
	if err := ensureValue(reader, out, &current.APIURL, seed.APIURL, "API URL"); err != nil {
		return "", err
	}
	if err := ensureValue(reader, out, &current.BotToken, seed.BotToken, "Bot token"); err != nil {
		return "", err
	}
	if err := ensureValue(reader, out, &current.ChatID, seed.ChatID, "Chat ID"); err != nil {
		return "", err
	}

	return Save(current)
}

func ensureValue(in *bufio.Reader, out io.Writer, target *string, provided, label string) error {
	if v := strings.TrimSpace(provided); v != "" {
		*target = v
		return nil
	}

	for {
		if strings.TrimSpace(*target) != "" {
			fmt.Fprintf(out, "%s (leave blank to keep current): ", label)
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading %s: %w", label, err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			if strings.TrimSpace(*target) != "" {
				return nil
			}
			fmt.Fprintf(out, "%s is required.\n", label)
			continue
		}
		*target = answer
		return nil
	}
}

// Show prints the config file location and its contents with the bot
// token redacted.
func Show(out io.Writer) error {
	path, err := Path()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration file: %s\n", path)

	f, err := Load()
	if err != nil {
		return err
	}
	if f == nil {
		fmt.Fprintln(out, "No configuration found. Run `sendtg --setup` to create one.")
		return nil
	}

	fmt.Fprintf(out, "API URL   : %s\n", orNotSet(f.APIURL))
	token := "<not set>"
	if f.BotToken != "" {
		token = RedactToken(f.BotToken)
	}
	fmt.Fprintf(out, "Bot Token : %s\n", token)
	fmt.Fprintf(out, "Chat ID   : %s\n", orNotSet(f.ChatID))
	return nil
}

func orNotSet(v string) string {
	if v == "" {
		return "<not set>"
	}
	return v
}
