package mediatypes

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind represents how a file is sent through the Bot API.
type Kind string

const (
	// KindPhoto is sent via sendPhoto or as a photo album entry.
	KindPhoto Kind = "photo"
	// KindVideo is sent via sendVideo or as a video album entry.
	KindVideo Kind = "video"
	// KindAudio is sent via sendAudio.
	KindAudio Kind = "audio"
	// KindDocument is the uncompressed fallback for everything else.
	KindDocument Kind = "document"
	// KindUnknown means the file could not be classified.
	KindUnknown Kind = ""
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
}

// KindForExtension returns the Kind for a given file extension.
// The extension should include the leading dot; case is ignored.
// Returns KindUnknown if the extension is not recognized.
func KindForExtension(ext string) Kind {
	ext = strings.ToLower(ext)
	if ImageExtensions[ext] {
		return KindPhoto
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	if AudioExtensions[ext] {
		return KindAudio
	}
	return KindUnknown
}

// KindForMime maps a MIME type onto a Kind the way the Bot API groups
// media: image/* is a photo, video/* a video, audio/* an audio track,
// everything else a document.
func KindForMime(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindPhoto
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	case mime == "":
		return KindUnknown
	default:
		return KindDocument
	}
}

// Detect classifies a file by extension first and falls back to content
// sniffing when the extension is unknown. The returned MIME type is empty
// when neither source could identify the file.
func Detect(path string) (Kind, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind := KindForExtension(ext); kind != KindUnknown {
		return kind, MimeTypes[ext]
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return KindUnknown, ""
	}
	mime := mtype.String()
	// strip parameters such as "; charset=utf-8"
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return KindForMime(mime), mime
}

// IsVisual reports whether the kind renders inline in the chat (photo or
// video). Spoiler flags and album mixing rules only apply to visual media.
func (k Kind) IsVisual() bool {
	return k == KindPhoto || k == KindVideo
}

// SendMethod returns the Bot API method used for a single-media send.
func (k Kind) SendMethod() string {
	switch k {
	case KindPhoto:
		return "sendPhoto"
	case KindVideo:
		return "sendVideo"
	case KindAudio:
		return "sendAudio"
	default:
		return "sendDocument"
	}
}

// UploadAction returns the sendChatAction value shown while a file of
// this kind uploads.
func (k Kind) UploadAction() string {
	switch k {
	case KindPhoto:
		return "upload_photo"
	case KindVideo:
		return "upload_video"
	case KindAudio:
		return "upload_voice"
	default:
		return "upload_document"
	}
}
