package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractBytesPlainText(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{"txt file", "notes.txt", []byte("hello world"), "hello world"},
		{"markdown file", "README.md", []byte("# Title\n\nBody"), "# Title\n\nBody"},
		{"no extension", "LICENSE", []byte("MIT"), "MIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytesInvalidUTF8Replaced(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte{'o', 'k', 0xff, 0xfe}, "raw.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "ok") {
		t.Errorf("got %q, want prefix %q", got, "ok")
	}
	if strings.Contains(got, "\xff") {
		t.Error("invalid UTF-8 bytes survived extraction")
	}
}

func TestExtractBytesFailures(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{"empty source", "a.txt", nil, ErrEmptySource},
		{"whitespace only", "a.txt", []byte("  \n "), ErrEmptySource},
		{"unsupported format", "a.exe", []byte("MZ"), ErrUnsupportedFormat},
		{"corrupt pdf", "a.pdf", []byte("not a pdf"), ErrUnsupportedFormat},
		{"corrupt docx", "a.docx", []byte("not a zip"), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractBytes(tt.content, tt.filename)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractBytesDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte(`<w:document><w:body><w:p w:rsidR="0"><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">docx world</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), "doc.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello docx world" {
		t.Errorf("got %q, want %q", got, "Hello docx world")
	}
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Gophers</title><style>body { color: red; }</style></head>
<body>
<script>console.log("should never appear")</script>
<article>
<h1>Gophers in production</h1>
<p>Go services are popular for network backends because goroutines make
concurrent request handling straightforward and cheap.</p>
<p>The garbage collector has improved significantly with each release,
and latency-sensitive systems now run comfortably on it. Teams that once
reached for heavier runtimes report smaller deployments and simpler
operational stories after migrating their edge services.</p>
<p>Static binaries remove a whole class of dependency problems. A single
artifact is copied into a minimal container image and shipped, with no
interpreter or system libraries to keep in sync across environments.</p>
<p>The standard library covers HTTP, cryptography, and serialization well
enough that many production services carry remarkably few third-party
dependencies, which keeps audit surfaces small and upgrades painless.</p>
<p>Tooling rounds out the picture: race detection, profiling, and fuzzing
ship with the toolchain itself, so performance and correctness work does
not require assembling a bespoke toolbox first.</p>
</article>
</body>
</html>`

func TestURLFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewURLFetcher(5*time.Second, 1<<20)
	text, err := f.Fetch(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "goroutines") {
		t.Errorf("extracted text missing article body: %q", text)
	}
	if strings.Contains(text, "console.log") {
		t.Error("script content leaked into extracted text")
	}
	if strings.Contains(text, "color: red") {
		t.Error("style content leaked into extracted text")
	}
}

func TestURLFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/huge":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write(bytes.Repeat([]byte("a"), 4096))
		}
	}))
	defer srv.Close()

	f := NewURLFetcher(5*time.Second, 1024)

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"bad scheme", "ftp://example.com/x", ErrFetch},
		{"not a url", "::::", ErrFetch},
		{"http status error", srv.URL + "/missing", ErrFetch},
		{"oversize body", srv.URL + "/huge", ErrOversizeSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestURLFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewURLFetcher(20*time.Millisecond, 1024)
	_, err := f.Fetch(srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Errorf("error = %v, want %v", err, ErrFetch)
	}
}
