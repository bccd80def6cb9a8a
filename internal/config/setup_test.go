package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupPromptsForEverything(t *testing.T) {
	isolateHome(t)

	in := strings.NewReader("https://api.telegram.org/bot\n123456:abcdef\n-1001234\n")
	var out bytes.Buffer

	if _, err := Setup(in, &out, File{}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	f, err := Load()
	if err != nil || f == nil {
		t.Fatalf("Load() after setup = (%+v, %v)", f, err)
	}
	if f.APIURL != "https://api.telegram.org/bot" || f.BotToken != "123456:abcdef" || f.ChatID != "-1001234" {
		t.Errorf("saved config = %+v", f)
	}
}

func TestSetupBlankKeepsCurrent(t *testing.T) {
	isolateHome(t)
	if _, err := Save(File{APIURL: "old-url", BotToken: "old-token", ChatID: "old-chat"}); err != nil {
		t.Fatal(err)
	}

	// Blank answers for URL and token, new chat ID.
	in := strings.NewReader("\n\nnew-chat\n")
	var out bytes.Buffer

	if _, err := Setup(in, &out, File{}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !strings.Contains(out.String(), "leave blank to keep current") {
		t.Error("prompt does not offer keeping the current value")
	}

	f, _ := Load()
	if f.APIURL != "old-url" || f.BotToken != "old-token" {
		t.Errorf("blank answers overwrote existing values: %+v", f)
	}
	if f.ChatID != "new-chat" {
		t.Errorf("ChatID = %q, want new-chat", f.ChatID)
	}
}

func TestSetupRepromptsWhenRequired(t *testing.T) {
	isolateHome(t)

	// First answer blank with nothing to keep, then a real value.
	in := strings.NewReader("\nurl\ntoken\nchat\n")
	var out bytes.Buffer

	if _, err := Setup(in, &out, File{}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !strings.Contains(out.String(), "API URL is required.") {
		t.Errorf("missing re-prompt notice, output:\n%s", out.String())
	}
}

func TestSetupSeedSkipsPrompt(t *testing.T) {
	isolateHome(t)

	// Seeded values come from flags; only the chat ID should be asked.
	in := strings.NewReader("chat\n")
	var out bytes.Buffer

	if _, err := Setup(in, &out, File{APIURL: "flag-url", BotToken: "flag-token"}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if strings.Contains(out.String(), "API URL:") || strings.Contains(out.String(), "Bot token:") {
		t.Errorf("seeded fields were prompted, output:\n%s", out.String())
	}

	f, _ := Load()
	if f.APIURL != "flag-url" || f.BotToken != "flag-token" || f.ChatID != "chat" {
		t.Errorf("saved config = %+v", f)
	}
}

func TestSetupEOF(t *testing.T) {
	isolateHome(t)

	in := strings.NewReader("")
	var out bytes.Buffer
	if _, err := Setup(in, &out, File{}); err == nil {
		t.Error("Setup() error = nil on closed input")
	}
}

func TestShowRedactsToken(t *testing.T) {
	isolateHome(t)
	if _, err := Save(File{APIURL: "u", BotToken: "1234567890abcdefghij", ChatID: "c"}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Show(&out); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	got := out.String()
	if strings.Contains(got, "abcdefghij") {
		t.Errorf("Show() leaks token:\n%s", got)
	}
	if !strings.Contains(got, "1234567890"+strings.Repeat("*", 30)) {
		t.Errorf("Show() output lacks redacted token:\n%s", got)
	}
}

func TestShowNoConfig(t *testing.T) {
	isolateHome(t)

	var out bytes.Buffer
	if err := Show(&out); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if !strings.Contains(out.String(), "No configuration found") {
		t.Errorf("Show() output = %q", out.String())
	}
}
