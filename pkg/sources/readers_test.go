package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/embedefy-bridge/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response for GET requests.
type stubHTTPClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.headers = headers
	return s.resp, s.err
}

func (s *stubHTTPClient) Post(context.Context, string, []byte, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("unexpected POST")
}

func (s *stubHTTPClient) Close() error { return nil }

func TestFileReaderSkipsBlankAndDuplicateLines(t *testing.T) {
	path := writeFile(t, "inputs.txt", "first line\r\n\n  second line  \nfirst line\n")

	inputs, err := NewFileReader().Read(context.Background(), Source{ID: "f", Location: path})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %#v", inputs)
	}
	if inputs[0].Text != "first line" || inputs[1].Text != "second line" {
		t.Fatalf("unexpected inputs %#v", inputs)
	}
	if inputs[0].ID != hashText("first line") {
		t.Fatalf("unexpected id %q", inputs[0].ID)
	}
}

func TestHTTPReaderRejectsNon200(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte("gone"), statusCode: 404}}
	_, err := NewHTTPReader(client).Read(context.Background(), Source{ID: "h", Location: "https://example.com"})
	if err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestHTTPReaderSendsConfiguredHeaders(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte("a\nb\n"), statusCode: 200}}
	src := Source{ID: "h", Location: "https://example.com", Config: map[string]any{ConfigAcceptKey: "text/plain"}}

	inputs, err := NewHTTPReader(client).Read(context.Background(), src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}
	if client.headers["Accept"] != "text/plain" {
		t.Fatalf("Accept header = %q", client.headers["Accept"])
	}
}

func TestHTMLReaderExtractsMetaAndSelector(t *testing.T) {
	html := []byte(`
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta name="description" content="Plain description">
  </head>
  <body>
    <article>
      <p>First   paragraph.</p>
      <p>   </p>
      <p>Second paragraph.</p>
    </article>
    <p>Outside article.</p>
  </body>
</html>`)
	client := &stubHTTPClient{resp: stubHTTPResponse{body: html, statusCode: 200}}
	src := Source{ID: "page", Location: "https://example.com", Config: map[string]any{ConfigSelectorKey: "article p"}}

	inputs, err := NewHTMLReader(client).Read(context.Background(), src)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"OG Title", "Plain description", "First paragraph.", "Second paragraph."}
	if len(inputs) != len(want) {
		t.Fatalf("expected %d inputs, got %#v", len(want), inputs)
	}
	for i, w := range want {
		if inputs[i].Text != w {
			t.Fatalf("inputs[%d] = %q, want %q", i, inputs[i].Text, w)
		}
	}
}

func TestDefaultReaderRegistryResolvesByType(t *testing.T) {
	reg := DefaultReaderRegistry(&stubHTTPClient{})
	for _, typ := range []string{TypeFile, TypeHTTP, "HTML"} {
		rd, err := reg.ReaderFor(Source{ID: "x", Type: typ})
		if err != nil {
			t.Fatalf("ReaderFor(%s): %v", typ, err)
		}
		if rd == nil {
			t.Fatalf("nil reader for %s", typ)
		}
	}
	if _, err := reg.ReaderFor(Source{ID: "x", Type: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
