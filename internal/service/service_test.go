package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/notadecision/internal/files"
	"github.com/jmylchreest/notadecision/internal/pdftext"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

const notaText = "Nota aan de Vlaamse Regering\n\nVOORSTEL VAN BESLISSING\n\n" +
	"De Vlaamse Regering beslist:\n\n1. het plan goed te keuren.\n\n" +
	"De minister-president van de Vlaamse Regering,\n\nJan Jambon"

type fakeLookup struct {
	fileID string
	file   *files.File
	err    error
}

func (f *fakeLookup) NotaFile(_ context.Context, notaID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.fileID == "" {
		return "", files.ErrNotFound
	}
	return f.fileID, nil
}

func (f *fakeLookup) FileByID(_ context.Context, fileID string) (*files.File, error) {
	if f.file == nil {
		return nil, files.ErrNotFound
	}
	return f.file, nil
}

// textDecoder treats the document bytes as its text layer.
type textDecoder struct{}

func (textDecoder) Decode(r io.ReaderAt, size int64) (string, error) {
	buf := make([]byte, size)
	_, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return "", err
	}
	return string(buf), nil
}

type failingDecoder struct{}

func (failingDecoder) Decode(io.ReaderAt, int64) (string, error) {
	return "", pdftext.ErrDecode
}

func newShare(t *testing.T, name, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestService_Decision(t *testing.T) {
	root := newShare(t, "nota.pdf", notaText)
	lookup := &fakeLookup{
		fileID: "file-1",
		file:   &files.File{ID: "file-1", DataSource: "share://nota.pdf"},
	}
	svc := New(lookup, decision.MustNew(nil), Options{ShareRoot: root, Decoder: textDecoder{}})

	res, err := svc.Decision(context.Background(), "nota-1")
	if err != nil {
		t.Fatalf("Decision() error = %v", err)
	}

	want := "<p>De Vlaamse Regering beslist:</p>\n<p>&nbsp;&nbsp; 1. het plan goed te keuren.</p>"
	if res.Content != want {
		t.Errorf("Content = %q, want %q", res.Content, want)
	}
	if !res.Anchored || res.Fallback {
		t.Errorf("Anchored = %v, Fallback = %v", res.Anchored, res.Fallback)
	}
}

func TestService_Decision_Errors(t *testing.T) {
	root := newShare(t, "nota.pdf", notaText)
	errDown := errors.New("sparql down")

	tests := []struct {
		name    string
		lookup  *fakeLookup
		decoder pdftext.Decoder
		maxSize int64
		wantErr error
	}{
		{
			name:    "nota_not_found",
			lookup:  &fakeLookup{},
			wantErr: files.ErrNotFound,
		},
		{
			name:    "file_not_found",
			lookup:  &fakeLookup{fileID: "file-1"},
			wantErr: files.ErrNotFound,
		},
		{
			name:    "no_data_source",
			lookup:  &fakeLookup{fileID: "file-1", file: &files.File{ID: "file-1"}},
			wantErr: files.ErrNotFound,
		},
		{
			name:    "lookup_failure",
			lookup:  &fakeLookup{err: errDown},
			wantErr: errDown,
		},
		{
			name:    "foreign_scheme",
			lookup:  &fakeLookup{fileID: "file-1", file: &files.File{DataSource: "s3://bucket/nota.pdf"}},
			wantErr: pdftext.ErrDecode,
		},
		{
			name:    "missing_on_share",
			lookup:  &fakeLookup{fileID: "file-1", file: &files.File{DataSource: "share://other.pdf"}},
			wantErr: pdftext.ErrDecode,
		},
		{
			name:    "undecodable",
			lookup:  &fakeLookup{fileID: "file-1", file: &files.File{DataSource: "share://nota.pdf"}},
			decoder: failingDecoder{},
			wantErr: pdftext.ErrDecode,
		},
		{
			name:    "too_large",
			lookup:  &fakeLookup{fileID: "file-1", file: &files.File{DataSource: "share://nota.pdf"}},
			maxSize: 10,
			wantErr: pdftext.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := tt.decoder
			if dec == nil {
				dec = textDecoder{}
			}
			svc := New(tt.lookup, decision.MustNew(nil), Options{
				ShareRoot:   root,
				MaxFileSize: tt.maxSize,
				Decoder:     dec,
			})

			_, err := svc.Decision(context.Background(), "nota-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decision() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Decision_FallbackIsNotAnError(t *testing.T) {
	root := newShare(t, "nota.pdf", "VOORSTEL VAN BESLISSING\n\nBijlage 1")
	lookup := &fakeLookup{
		fileID: "file-1",
		file:   &files.File{DataSource: "share://nota.pdf"},
	}
	svc := New(lookup, decision.MustNew(nil), Options{ShareRoot: root, Decoder: textDecoder{}})

	res, err := svc.Decision(context.Background(), "nota-1")
	if err != nil {
		t.Fatalf("Decision() error = %v", err)
	}
	if !res.Fallback || !errors.Is(res.Reason, decision.ErrEmptyResult) {
		t.Errorf("expected empty-result fallback, got Fallback=%v Reason=%v", res.Fallback, res.Reason)
	}
	if res.Content != "\n\nBijlage 1" {
		t.Errorf("Content = %q, want anchored text", res.Content)
	}
}

func TestService_Decision_CancelledContext(t *testing.T) {
	root := newShare(t, "nota.pdf", notaText)
	lookup := &fakeLookup{fileID: "file-1", file: &files.File{DataSource: "share://nota.pdf"}}
	svc := New(lookup, decision.MustNew(nil), Options{ShareRoot: root, Decoder: textDecoder{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Decision(ctx, "nota-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_DefaultDecoder(t *testing.T) {
	svc := New(&fakeLookup{}, decision.MustNew(nil), Options{})
	if _, ok := svc.opts.Decoder.(pdftext.PDFDecoder); !ok {
		t.Errorf("default decoder = %T, want pdftext.PDFDecoder", svc.opts.Decoder)
	}
}
