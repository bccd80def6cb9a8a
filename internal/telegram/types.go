package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNetwork marks connect/timeout failures, as opposed to errors the API
// itself reported.
var ErrNetwork = errors.New("network error")

// APIError is a failure reported by the Bot API. The description is kept
// verbatim for diagnostics.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("telegram API error %d", e.Code)
}

// envelope is the JSON wrapper around every Bot API response.
type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// message is the slice of a sent message we care about.
type message struct {
	MessageID int `json:"message_id"`
}

// chatInfo is the slice of a getChat result we care about.
type chatInfo struct {
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// displayName renders a human-readable chat label for log lines.
func (c chatInfo) displayName() string {
	if c.Title != "" {
		return c.Title
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "Unknown"
	}
	return name
}

// InlineButton is one URL button of an inline keyboard.
type InlineButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ReplyMarkup builds the JSON reply_markup payload for a single inline
// URL button. Both label and URL must be present; anything else yields no
// markup.
func ReplyMarkup(text, url string) string {
	if text == "" || url == "" {
		return ""
	}
	markup := struct {
		InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
	}{
		InlineKeyboard: [][]InlineButton{{{Text: text, URL: url}}},
	}
	out, err := json.Marshal(markup)
	if err != nil {
		return ""
	}
	return string(out)
}
