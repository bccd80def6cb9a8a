// Package telegram talks to the Bot API over HTTP.
//
// The client covers exactly the surface the sender needs: text messages,
// single-media and media-group uploads, chat actions, chat name lookup
// and a latency check. Media uploads stream their multipart bodies and
// are attempted exactly once; only idempotent probing calls (getChat, the
// latency check) are retried. API error descriptions are surfaced
// verbatim, and the bot token is scrubbed from anything that reaches the
// logs.
package telegram
