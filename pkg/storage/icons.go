package storage

import "strings"

// defaultIcon is shown for extensions the table does not know.
const defaultIcon = "📎"

var iconByExt = map[string]string{
	// Images
	"jpg": "🖼️", "jpeg": "🖼️", "png": "🖼️", "gif": "🖼️",
	"webp": "🖼️", "svg": "🖼️", "bmp": "🖼️", "ico": "🖼️",
	// Videos
	"mp4": "🎬", "webm": "🎬", "avi": "🎬", "mov": "🎬",
	"mkv": "🎬", "flv": "🎬", "wmv": "🎬",
	// Audio
	"mp3": "🎵", "wav": "🎵", "ogg": "🎵", "flac": "🎵",
	"aac": "🎵", "m4a": "🎵",
	// Documents
	"pdf": "📄", "doc": "📄", "docx": "📄", "txt": "📄",
	"md": "📄", "rtf": "📄",
	// Spreadsheets
	"xls": "📊", "xlsx": "📊", "csv": "📊", "ods": "📊",
	// Presentations
	"ppt": "📽️", "pptx": "📽️", "odp": "📽️",
	// Archives
	"zip": "📦", "tar": "📦", "gz": "📦", "bz2": "📦",
	"rar": "📦", "7z": "📦",
	// Code
	"html": "🌐", "css": "🎨", "js": "⚡", "ts": "⚡",
	"py": "🐍", "java": "☕", "go": "🐹",
	"rs": "🦀", "cpp": "🔧", "c": "🔧", "h": "🔧",
	"json": "📋", "xml": "📋", "yaml": "📋", "yml": "📋",
}

// IconFor returns the display icon for a filename based on its extension.
func IconFor(name string) string {
	ext := strings.TrimPrefix(Ext(name), ".")
	if icon, ok := iconByExt[ext]; ok {
		return icon
	}
	return defaultIcon
}
