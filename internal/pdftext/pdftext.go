// Package pdftext extracts the text layer of PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"

	"github.com/jmylchreest/notadecision/internal/logger"
)

var (
	// ErrDecode indicates the document could not be read or decoded.
	ErrDecode = errors.New("cannot decode document")
	// ErrTooLarge indicates the document exceeds the configured size limit.
	// It is always reported together with ErrDecode.
	ErrTooLarge = errors.New("document too large")
)

// Decoder turns a document into plain text.
type Decoder interface {
	Decode(r io.ReaderAt, size int64) (string, error)
}

// PDFDecoder decodes PDFs with their embedded text layer. Pages are
// separated by a newline.
type PDFDecoder struct{}

// Decode implements Decoder.
func (PDFDecoder) Decode(r io.ReaderAt, size int64) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrDecode, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrDecode, err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("skipping unreadable page", "page", i, "error", err)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(content)
	}
	return sb.String(), nil
}

// ReadFile decodes the document at path with d. Files larger than maxBytes
// are rejected before they are read; maxBytes of zero disables the limit.
func ReadFile(d Decoder, path string, maxBytes int64) (string, error) {
	data, err := LoadFile(path, maxBytes)
	if err != nil {
		return "", err
	}

	logger.Debug("decoding document", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return d.Decode(bytes.NewReader(data), int64(len(data)))
}

// LoadFile returns the contents of path, rejecting files larger than
// maxBytes from their size on disk.
func LoadFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, tooLarge(humanize.Bytes(uint64(info.Size())), maxBytes)
	}
	return ReadAll(f, maxBytes)
}

// ReadAll reads r to the end. Input longer than maxBytes is rejected after
// reading at most maxBytes+1 bytes; maxBytes of zero disables the limit.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, tooLarge("input", maxBytes)
	}
	return data, nil
}

func tooLarge(size string, maxBytes int64) error {
	return fmt.Errorf("%w: %w: %s exceeds %s", ErrDecode, ErrTooLarge, size, humanize.Bytes(uint64(maxBytes)))
}

// ParseSize parses a human-readable size such as "50MB". Empty and "0"
// mean unlimited.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}
