package models

import (
	"path/filepath"
	"strings"
)

// FileType tags the kind of a generated file. The pipeline may emit tags
// outside the known set; every method below has an explicit default for them.
type FileType string

const (
	FileHTML       FileType = "html"
	FileCSS        FileType = "css"
	FileJavaScript FileType = "javascript"
	FileJS         FileType = "js"
	FileJSON       FileType = "json"
	FileMarkdown   FileType = "markdown"
	FileMD         FileType = "md"
	FileText       FileType = "txt"
)

// Kind collapses aliases (js, md) onto their canonical tag. Unknown tags are
// returned unchanged.
func (t FileType) Kind() FileType {
	switch t {
	case FileJS:
		return FileJavaScript
	case FileMD:
		return FileMarkdown
	default:
		return t
	}
}

// Label is the badge shown next to a file.
func (t FileType) Label() string {
	switch t.Kind() {
	case FileHTML:
		return "HTML"
	case FileCSS:
		return "CSS"
	case FileJavaScript:
		return "JavaScript"
	case FileJSON:
		return "JSON"
	case FileMarkdown:
		return "Markdown"
	default:
		return strings.ToUpper(string(t))
	}
}

// Language is the syntax highlighting language for the file content.
func (t FileType) Language() string {
	switch t.Kind() {
	case FileHTML:
		return "html"
	case FileCSS:
		return "css"
	case FileJavaScript:
		return "javascript"
	case FileJSON:
		return "json"
	case FileMarkdown:
		return "markdown"
	default:
		return "text"
	}
}

// ContentType is the MIME type served for single-file downloads.
func (t FileType) ContentType() string {
	switch t.Kind() {
	case FileHTML:
		return "text/html; charset=utf-8"
	case FileCSS:
		return "text/css; charset=utf-8"
	case FileJavaScript:
		return "text/javascript; charset=utf-8"
	case FileJSON:
		return "application/json"
	case FileMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// DetectFileType derives a tag from a filename extension. Files without an
// extension are plain text.
func DetectFileType(filename string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "":
		return FileText
	case "htm", "html":
		return FileHTML
	case "js", "mjs", "cjs":
		return FileJavaScript
	case "md", "markdown":
		return FileMarkdown
	default:
		return FileType(ext)
	}
}
