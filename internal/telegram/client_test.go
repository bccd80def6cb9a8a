package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/najahiiii/telebot-send/internal/encode"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/bot", "123:SECRET", "-100200300", 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.retry = RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return c, srv
}

func okEnvelope(result string) string {
	return `{"ok":true,"result":` + result + `}`
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name                string
		apiURL, token, chat string
		wantErr             bool
	}{
		{"all set", "https://api.telegram.org/bot", "123:abc", "42", false},
		{"missing url", "", "123:abc", "42", true},
		{"missing token", "https://api.telegram.org/bot", "  ", "42", true},
		{"missing chat", "https://api.telegram.org/bot", "123:abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.apiURL, tt.token, tt.chat, 0)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEndpointConstruction(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, okEnvelope(`{"message_id":1}`))
	})

	if _, err := c.SendMessage(context.Background(), "hi", false, ""); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	want := "/bot123:SECRET/sendMessage"
	if gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}
}

func TestSendMessagePayload(t *testing.T) {
	var payload map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bot123:SECRET/sendChatAction" {
			io.WriteString(w, okEnvelope(`true`))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		io.WriteString(w, okEnvelope(`{"message_id":77}`))
	})

	markup := ReplyMarkup("Open", "https://example.com")
	id, err := c.SendMessage(context.Background(), `line one\nline two`, true, markup)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if id != 77 {
		t.Errorf("message id = %d, want 77", id)
	}
	if got := payload["text"]; got != "line one\nline two" {
		t.Errorf("text = %q, want unescaped newline", got)
	}
	if got := payload["parse_mode"]; got != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", got)
	}
	if got := payload["disable_notification"]; got != true {
		t.Errorf("disable_notification = %v, want true", got)
	}
	if payload["reply_markup"] == nil {
		t.Error("reply_markup missing from payload")
	}
}

func TestSendMessageThreadID(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendChatAction") {
			io.WriteString(w, okEnvelope(`true`))
			return
		}
		json.NewDecoder(r.Body).Decode(&payload)
		io.WriteString(w, okEnvelope(`{"message_id":5}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/bot", "123:SECRET", "42", 99)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.SendMessage(context.Background(), "hi", false, ""); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := payload["message_thread_id"]; got != float64(99) {
		t.Errorf("message_thread_id = %v, want 99", got)
	}
}

func TestAPIErrorDescriptionPreserved(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendChatAction") {
			io.WriteString(w, okEnvelope(`true`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	})

	_, err := c.SendMessage(context.Background(), "hi", false, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("code = %d, want 400", apiErr.Code)
	}
	if apiErr.Description != "Bad Request: chat not found" {
		t.Errorf("description = %q, want verbatim API description", apiErr.Description)
	}
}

func TestSendAlbumOnceAndIDs(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", ct)
		}
		io.WriteString(w, okEnvelope(`[{"message_id":10},{"message_id":11}]`))
	})

	body := &encode.Body{
		Reader:      io.NopCloser(strings.NewReader("payload")),
		ContentType: "multipart/form-data; boundary=x",
	}
	ids, err := c.SendAlbum(context.Background(), body)
	if err != nil {
		t.Fatalf("SendAlbum() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 11 {
		t.Errorf("ids = %v, want [10 11]", ids)
	}
	if calls != 1 {
		t.Errorf("requests = %d, want exactly 1", calls)
	}
}

func TestSendAlbumNotRetriedOnFailure(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"ok":false,"error_code":502,"description":"Bad Gateway"}`)
	})

	body := &encode.Body{
		Reader:      io.NopCloser(strings.NewReader("payload")),
		ContentType: "multipart/form-data; boundary=x",
	}
	if _, err := c.SendAlbum(context.Background(), body); err == nil {
		t.Fatal("SendAlbum() error = nil, want failure")
	}
	if calls != 1 {
		t.Errorf("requests = %d, media sends must not retry", calls)
	}
}

func TestSendSingle(t *testing.T) {
	var gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.URL.Path
		io.WriteString(w, okEnvelope(`{"message_id":3}`))
	})

	body := &encode.Body{
		Reader:      io.NopCloser(strings.NewReader("payload")),
		ContentType: "multipart/form-data; boundary=x",
	}
	id, err := c.SendSingle(context.Background(), "sendVideo", body)
	if err != nil {
		t.Fatalf("SendSingle() error = %v", err)
	}
	if id != 3 {
		t.Errorf("id = %d, want 3", id)
	}
	if !strings.HasSuffix(gotMethod, "/sendVideo") {
		t.Errorf("path = %q, want sendVideo endpoint", gotMethod)
	}
}

func TestResolveChatNameRetries(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`)
			return
		}
		io.WriteString(w, okEnvelope(`{"title":"Release Channel"}`))
	})

	if got := c.ResolveChatName(context.Background()); got != "Release Channel" {
		t.Errorf("chat name = %q, want %q", got, "Release Channel")
	}
	if calls != 2 {
		t.Errorf("requests = %d, want retry after first failure", calls)
	}
}

func TestDeterministicRejectionNotRetried(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	})

	c.ResolveChatName(context.Background())
	if calls != 1 {
		t.Errorf("getChat requests = %d, a 400 must not be re-posted", calls)
	}

	calls = 0
	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("Check() error = nil, want API rejection")
	}
	if calls != 1 {
		t.Errorf("check requests = %d, a 400 must not be re-posted", calls)
	}
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"ok":false,"error_code":502,"description":"Bad Gateway"}`)
	})

	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("Check() error = nil, want failure after retries")
	}
	if want := c.retry.MaxRetries + 1; calls != want {
		t.Errorf("check requests = %d, want %d (5xx keeps retrying)", calls, want)
	}
}

func TestResolveChatNameFallsBack(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"chat not found"}`)
	})

	if got := c.ResolveChatName(context.Background()); got != "Unknown" {
		t.Errorf("chat name = %q, want Unknown fallback", got)
	}
}

func TestCheckMeasuresRoundTrip(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["action"] == "" || payload["action"] == nil {
			t.Error("check request lacks a chat action")
		}
		io.WriteString(w, okEnvelope(`true`))
	})

	rtt, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if rtt <= 0 {
		t.Errorf("round trip = %v, want positive duration", rtt)
	}
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := New(srv.URL+"/bot", "123:SECRET", "42", 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.retry = RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	if _, err := c.Check(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("Check() error = %v, want ErrNetwork", err)
	}
}

func TestTokenRedactedFromErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := New(srv.URL+"/bot", "123:SECRET", "42", 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.retry = RetryConfig{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	_, err = c.Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil, want network failure")
	}
	if strings.Contains(err.Error(), "SECRET") {
		t.Errorf("error leaks bot token: %v", err)
	}
}

func TestBaseFields(t *testing.T) {
	c, err := New("https://api.telegram.org/bot", "123:abc", "42", 7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	fields := c.BaseFields(true, `{"inline_keyboard":[]}`)
	if fields["chat_id"] != "42" {
		t.Errorf("chat_id = %q, want 42", fields["chat_id"])
	}
	if fields["disable_notification"] != "true" {
		t.Errorf("disable_notification = %q, want true", fields["disable_notification"])
	}
	if fields["message_thread_id"] != "7" {
		t.Errorf("message_thread_id = %q, want 7", fields["message_thread_id"])
	}
	if fields["reply_markup"] == "" {
		t.Error("reply_markup missing")
	}

	plain := c.BaseFields(false, "")
	if _, ok := plain["disable_notification"]; ok {
		t.Error("disable_notification set without --silent")
	}
	if _, ok := plain["reply_markup"]; ok {
		t.Error("reply_markup set without a button")
	}
}

func TestReplyMarkup(t *testing.T) {
	tests := []struct {
		name, text, url string
		wantEmpty       bool
	}{
		{"both set", "Open", "https://example.com", false},
		{"text only", "Open", "", true},
		{"url only", "", "https://example.com", true},
		{"neither", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplyMarkup(tt.text, tt.url)
			if (got == "") != tt.wantEmpty {
				t.Fatalf("ReplyMarkup(%q, %q) = %q, wantEmpty %v", tt.text, tt.url, got, tt.wantEmpty)
			}
			if tt.wantEmpty {
				return
			}
			var markup struct {
				Keyboard [][]InlineButton `json:"inline_keyboard"`
			}
			if err := json.Unmarshal([]byte(got), &markup); err != nil {
				t.Fatalf("markup is not valid JSON: %v", err)
			}
			if len(markup.Keyboard) != 1 || len(markup.Keyboard[0]) != 1 {
				t.Fatalf("keyboard shape = %v, want single row with one button", markup.Keyboard)
			}
			if markup.Keyboard[0][0].Text != tt.text || markup.Keyboard[0][0].URL != tt.url {
				t.Errorf("button = %+v, want text %q url %q", markup.Keyboard[0][0], tt.text, tt.url)
			}
		})
	}
}
