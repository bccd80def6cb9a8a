// Package mediatypes classifies local files into the media kinds the
// Telegram Bot API distinguishes: photo, video, audio and document.
//
// Classification is extension-driven with a content-sniffing fallback for
// files whose extension is missing or unrecognized. The package also maps
// each kind onto the Bot API method and chat action used to send it.
package mediatypes
