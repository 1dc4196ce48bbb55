package gcs

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func testClient(serverURL string) *Client {
	return &Client{
		token:      "test-token",
		baseURL:    serverURL,
		uploadURL:  serverURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestDownloadText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Path {
		case "/b/docs/o/example.txt":
			fmt.Fprint(w, "hello world")
		case "/b/docs/o/binary.bin":
			w.Write([]byte{0xff, 0xfe, 0x00, 0x80})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)

	text, ok, err := c.DownloadText("docs", "example.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || text != "hello world" {
		t.Errorf("got (%q, %v), want (\"hello world\", true)", text, ok)
	}

	// Missing object is absent, not an error.
	_, ok, err = c.DownloadText("docs", "missing.txt")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing object to be reported as absent")
	}

	// Invalid UTF-8 is treated as absent.
	_, ok, err = c.DownloadText("docs", "binary.bin")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected invalid UTF-8 content to be reported as absent")
	}
}

func TestListFollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("prefix") != "guides/" {
			t.Errorf("expected prefix query param, got %q", r.URL.Query().Get("prefix"))
		}
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"items":[{"name":"guides/a.txt"},{"name":"guides/b.txt"}],"nextPageToken":"p2"}`)
		} else {
			fmt.Fprint(w, `{"items":[{"name":"guides/c.txt"}]}`)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)

	names, err := c.List("docs", "guides/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"guides/a.txt", "guides/b.txt", "guides/c.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestUpload(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("name") != "guides/manual.txt" {
			t.Errorf("unexpected object name %q", r.URL.Query().Get("name"))
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	localPath := filepath.Join(t.TempDir(), "manual.txt")
	if err := os.WriteFile(localPath, []byte("manual contents"), 0644); err != nil {
		t.Fatal(err)
	}

	c := testClient(server.URL)
	if err := c.Upload("docs", localPath, "guides/manual.txt"); err != nil {
		t.Fatal(err)
	}
	if gotBody != "manual contents" {
		t.Errorf("uploaded body = %q", gotBody)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("/nonexistent/key.json", "RAG_TEST_TOKEN"); err == nil {
		t.Error("expected error for missing credentials file")
	}
}
