package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DoubtSolver/internal/domain/commonModels"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// buildPDF writes a minimal PDF with one text-showing page per entry in pageTexts.
func buildPDF(pageTexts ...string) []byte {
	var objects []string
	n := len(pageTexts)
	fontObj := 3 + 2*n

	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	)
	for i, text := range pageTexts {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestLoad_PlainText(t *testing.T) {
	content := "Newton's First Law: an object stays at rest.\n\n  indented line\n"
	path := writeFile(t, "notes.txt", []byte(content))

	ext, err := New(0).Load(context.Background(), Source{Name: "notes.txt", Path: path, MediaType: "text/plain"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ext.Text != content {
		t.Errorf("text got %q, want raw content %q", ext.Text, content)
	}
	if ext.PageCount != 1 {
		t.Errorf("page count got %d, want 1", ext.PageCount)
	}
	if ext.ContentType != commonModels.TXT {
		t.Errorf("content type got %s", ext.ContentType)
	}
}

func TestLoad_PDFPagesInOrder(t *testing.T) {
	path := writeFile(t, "book.pdf", buildPDF("Hello", "World", "Again"))

	ext, err := New(0).Load(context.Background(), Source{Name: "book.pdf", Path: path, MediaType: "application/pdf"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ext.PageCount != 3 {
		t.Errorf("page count got %d, want 3", ext.PageCount)
	}
	hello, world, again := strings.Index(ext.Text, "Hello"), strings.Index(ext.Text, "World"), strings.Index(ext.Text, "Again")
	if hello < 0 || world < 0 || again < 0 {
		t.Fatalf("missing page text in %q", ext.Text)
	}
	if !(hello < world && world < again) {
		t.Errorf("pages out of order in %q", ext.Text)
	}
	if strings.Count(ext.Text, PageSeparator) < 2 {
		t.Errorf("expected separators between pages in %q", ext.Text)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		data      []byte
		mediaType string
		maxChars  int
		wantErr   error
	}{
		{name: "corrupt pdf", file: "broken.pdf", data: []byte("%PDF-1.4 definitely not a pdf"), mediaType: "application/pdf", wantErr: ErrLoadFailure},
		{name: "unsupported", file: "image.png", data: []byte{0x89, 'P', 'N', 'G'}, mediaType: "image/png", wantErr: ErrUnsupportedType},
		{name: "empty text", file: "empty.txt", data: []byte("  \n\t"), mediaType: "text/plain", wantErr: ErrNoText},
		{name: "too large", file: "big.txt", data: []byte("abcdefghij"), mediaType: "text/plain", maxChars: 5, wantErr: ErrDocumentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			_, err := New(tt.maxChars).Load(context.Background(), Source{Name: tt.file, Path: path, MediaType: tt.mediaType})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrLoadFailure) {
				t.Errorf("every failure must be a load failure, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New(0).Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "gone.txt"), MediaType: "text/plain"})
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("got %v, want ErrLoadFailure", err)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8", []byte("plain"), "plain"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "bom"...), "bom"},
		{"utf16 le", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText(tt.data)
			if err != nil {
				t.Fatalf("decodeText: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
