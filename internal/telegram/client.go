package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/najahiiii/telebot-send/internal/encode"
	"github.com/najahiiii/telebot-send/internal/logging"
)

// Client drives the Bot API for one chat. It is purpose-built for the
// outbound sending workflow; it is not a general Bot API binding.
type Client struct {
	apiURL   string
	botToken string
	chatID   string
	threadID int64

	// no overall timeout: album uploads legitimately run for minutes.
	// Cancellation comes from the request context.
	httpc *http.Client

	retry    RetryConfig
	chatName string
}

// New validates credentials and builds a client. The API base URL is the
// prefix up to and including "bot", e.g. "https://api.telegram.org/bot";
// requests go to {apiURL}{token}/{method}.
func New(apiURL, botToken, chatID string, threadID int64) (*Client, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, errors.New("API URL is missing")
	}
	if strings.TrimSpace(botToken) == "" {
		return nil, errors.New("bot token is missing")
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, errors.New("chat ID is missing")
	}
	return &Client{
		apiURL:   apiURL,
		botToken: botToken,
		chatID:   chatID,
		threadID: threadID,
		httpc:    &http.Client{},
		retry:    DefaultRetryConfig(),
		chatName: "Unknown",
	}, nil
}

// ChatID returns the configured target chat.
func (c *Client) ChatID() string {
	return c.chatID
}

// ChatName returns the last resolved chat display name.
func (c *Client) ChatName() string {
	return c.chatName
}

// BaseFields returns the form fields every media request carries.
func (c *Client) BaseFields(silent bool, replyMarkup string) encode.Fields {
	fields := encode.Fields{"chat_id": c.chatID}
	if silent {
		fields["disable_notification"] = "true"
	}
	if replyMarkup != "" {
		fields["reply_markup"] = replyMarkup
	}
	if c.threadID != 0 {
		fields["message_thread_id"] = strconv.FormatInt(c.threadID, 10)
	}
	return fields
}

func (c *Client) endpoint(method string) string {
	return c.apiURL + c.botToken + "/" + method
}

// redact strips the bot token out of anything destined for logs or error
// messages.
func (c *Client) redact(s string) string {
	return strings.ReplaceAll(s, c.botToken, "REDACTED")
}

// SendMessage posts a text message. Literal "\n" sequences are unescaped
// so shell-quoted multiline text renders as expected, and HTML parse mode
// matches what the API offers for formatting.
func (c *Client) SendMessage(ctx context.Context, text string, silent bool, replyMarkup string) (int, error) {
	c.SendChatAction(ctx, "typing")

	payload := map[string]interface{}{
		"chat_id":              c.chatID,
		"text":                 strings.ReplaceAll(text, `\n`, "\n"),
		"parse_mode":           "HTML",
		"disable_notification": silent,
	}
	if replyMarkup != "" {
		payload["reply_markup"] = json.RawMessage(replyMarkup)
	}
	if c.threadID != 0 {
		payload["message_thread_id"] = c.threadID
	}

	result, err := c.postJSON(ctx, "sendMessage", payload)
	if err != nil {
		return 0, err
	}
	var msg message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("parsing sendMessage result: %w", err)
	}
	return msg.MessageID, nil
}

// SendAlbum posts one sendMediaGroup request. Attempted exactly once.
func (c *Client) SendAlbum(ctx context.Context, body *encode.Body) ([]int, error) {
	result, err := c.postMultipart(ctx, "sendMediaGroup", body)
	if err != nil {
		return nil, err
	}
	var msgs []message
	if err := json.Unmarshal(result, &msgs); err != nil {
		return nil, fmt.Errorf("parsing sendMediaGroup result: %w", err)
	}
	ids := make([]int, len(msgs))
	for i, m := range msgs {
		ids[i] = m.MessageID
	}
	return ids, nil
}

// SendSingle posts one single-media request (sendPhoto, sendVideo,
// sendAudio or sendDocument). Attempted exactly once.
func (c *Client) SendSingle(ctx context.Context, method string, body *encode.Body) (int, error) {
	result, err := c.postMultipart(ctx, method, body)
	if err != nil {
		return 0, err
	}
	var msg message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("parsing %s result: %w", method, err)
	}
	return msg.MessageID, nil
}

// SendChatAction fires a chat action. Best-effort: failures are logged at
// debug level and swallowed.
func (c *Client) SendChatAction(ctx context.Context, action string) {
	form := url.Values{"chat_id": {c.chatID}, "action": {action}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("sendChatAction"), strings.NewReader(form.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := c.do(req); err != nil {
		logging.Debug("Failed to send chat action: %v", c.redact(err.Error()))
	}
}

// ResolveChatName probes getChat for a display name used in log lines.
// This is an idempotent config-probing call, so it retries.
func (c *Client) ResolveChatName(ctx context.Context) string {
	err := withRetry(ctx, c.retry, "getChat", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.endpoint("getChat")+"?chat_id="+url.QueryEscape(c.chatID), nil)
		if err != nil {
			return err
		}
		result, err := c.do(req)
		if err != nil {
			return err
		}
		var info chatInfo
		if err := json.Unmarshal(result, &info); err != nil {
			return fmt.Errorf("parsing getChat result: %w", err)
		}
		c.chatName = info.displayName()
		return nil
	})
	if err != nil {
		logging.Debug("Failed to get chat name: %v", c.redact(err.Error()))
	}
	return c.chatName
}

// checkActions is the pool Check draws a random action from; any of them
// is an equally cheap round trip.
var checkActions = []string{
	"typing",
	"upload_photo",
	"record_video",
	"upload_video",
	"record_voice",
	"upload_voice",
	"upload_document",
	"choose_sticker",
	"find_location",
	"record_video_note",
	"upload_video_note",
}

// Check measures the API round-trip time with a no-payload sendChatAction
// call. Retried a bounded number of times before the endpoint is reported
// unreachable.
func (c *Client) Check(ctx context.Context) (time.Duration, error) {
	action := checkActions[rand.Intn(len(checkActions))]
	payload := map[string]interface{}{
		"chat_id": c.chatID,
		"action":  action,
	}

	start := time.Now()
	err := withRetry(ctx, c.retry, "latency check", func() error {
		start = time.Now()
		_, err := c.postJSON(ctx, "sendChatAction", payload)
		return err
	})
	if err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// postJSON issues a JSON-bodied call and unwraps the response envelope.
func (c *Client) postJSON(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(method), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// postMultipart issues a streaming multipart call and unwraps the
// response envelope.
func (c *Client) postMultipart(ctx context.Context, method string, body *encode.Body) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), body.Reader)
	if err != nil {
		body.Reader.Close()
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", body.ContentType)
	return c.do(req)
}

// do executes a request and parses the API envelope into result bytes or
// an error with the remote description preserved verbatim.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNetwork, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %s", ErrNetwork, c.redact(err.Error()))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Code: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("%w: malformed response: %s", ErrNetwork, c.redact(err.Error()))
	}
	if !env.OK {
		return nil, &APIError{Code: env.ErrorCode, Description: env.Description}
	}
	return env.Result, nil
}
