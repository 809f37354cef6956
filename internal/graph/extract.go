package graph

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// DefaultMaxFileSize is the size ceiling above which a file is not read.
const DefaultMaxFileSize = 1_000_000

// ExtractFile reads absPath and extracts it through reg, recording the result
// under relPath. Per-file problems never surface as errors: files above
// maxSize are not read (FileTooLarge), unreadable files become ReadFailed and
// invalid UTF-8 is replaced and flagged DecodeFallback while still being
// processed.
func ExtractFile(ctx context.Context, reg *Registry, absPath, relPath string, maxSize int64) FileExtraction {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	lang, _ := LanguageForPath(relPath)

	// The ceiling applies to every file, supported or not.
	info, err := os.Stat(absPath)
	if err != nil {
		return failed(relPath, lang, docerr.KindReadFailed)
	}
	if info.Size() > maxSize {
		return failed(relPath, lang, docerr.KindFileTooLarge)
	}
	if !reg.Supports(lang) {
		return failed(relPath, lang, docerr.KindUnsupportedLanguage)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return failed(relPath, lang, docerr.KindReadFailed)
	}
	return ExtractContent(ctx, reg, relPath, content, lang, maxSize)
}

// ExtractContent extracts in-memory content, applying the same size and
// decoding rules as ExtractFile.
func ExtractContent(ctx context.Context, reg *Registry, path string, content []byte, lang Language, maxSize int64) FileExtraction {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if int64(len(content)) > maxSize {
		return failed(path, lang, docerr.KindFileTooLarge)
	}

	var decodeKind docerr.Kind
	if !utf8.Valid(content) {
		content = []byte(toValidUTF8(content))
		decodeKind = docerr.KindDecodeFallback
	}

	res := reg.Extract(ctx, path, content, lang)
	if res.ParseError == "" {
		res.ParseError = decodeKind
	}
	return res
}

// toValidUTF8 replaces each invalid byte with U+FFFD.
func toValidUTF8(b []byte) string {
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r) // RuneError for invalid bytes
		b = b[size:]
	}
	return string(out)
}
