package commonModels

import (
	"mime"
	"path/filepath"
	"strings"
)

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

var mediaTypes = map[string]DocType{
	"application/pdf": PDF,
	"text/plain":      TXT,
	"text/markdown":   TXT,
	"text/x-markdown": TXT,
	"text/csv":        TXT,
	"application/rtf": DOCX,
	"text/rtf":        DOCX,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
	"application/vnd.oasis.opendocument.text":                                 DOCX,
}

// DocTypeFromMediaType resolves the declared media type tag. Parameters such as
// charset are ignored.
func DocTypeFromMediaType(mediaType string) DocType {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ERR
	}
	if t, ok := mediaTypes[strings.ToLower(mt)]; ok {
		return t
	}
	return ERR
}

func DocTypeFromPath(docPath string) DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return PDF
	case ".txt", ".md", ".markdown", ".csv", ".text":
		return TXT
	case ".docx", ".rtf", ".odt":
		return DOCX
	default:
		return ERR
	}
}

// ResolveDocType prefers the declared media type and falls back to the file extension
// when the tag is missing or generic.
func ResolveDocType(mediaType string, docPath string) DocType {
	if mediaType != "" && mediaType != "application/octet-stream" {
		if t := DocTypeFromMediaType(mediaType); t != ERR {
			return t
		}
	}
	return DocTypeFromPath(docPath)
}
