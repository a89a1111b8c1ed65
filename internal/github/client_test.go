package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/repos/acme/hr-docs/contents/policies/leave-policy.md" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("ref") != "main" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		response := map[string]interface{}{
			"type":     "file",
			"encoding": "base64",
			"name":     "leave-policy.md",
			"path":     "policies/leave-policy.md",
			"content":  base64.StdEncoding.EncodeToString([]byte("# Leave Policy\n24 days per year.")),
			"html_url": "https://github.com/acme/hr-docs/blob/main/policies/leave-policy.md",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL("test-token", "acme", "hr-docs", "main", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL: %v", err)
	}

	content, link, err := client.Fetch(context.Background(), "policies/leave-policy.md")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if content != "# Leave Policy\n24 days per year." {
		t.Errorf("unexpected content %q", content)
	}
	if link != "https://github.com/acme/hr-docs/blob/main/policies/leave-policy.md" {
		t.Errorf("unexpected link %q", link)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL("", "acme", "hr-docs", "", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL: %v", err)
	}
	if _, _, err := client.Fetch(context.Background(), "policies/missing.md"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestListDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/hr-docs/contents/policies" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		response := []map[string]interface{}{
			{"type": "file", "name": "leave-policy.md", "path": "policies/leave-policy.md"},
			{"type": "dir", "name": "archive", "path": "policies/archive"},
			{"type": "file", "name": "code-of-conduct.md", "path": "policies/code-of-conduct.md"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClientWithBaseURL("", "acme", "hr-docs", "", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL: %v", err)
	}
	files, err := client.ListDocuments(context.Background(), "policies")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(files) != 2 || files[0] != "policies/leave-policy.md" || files[1] != "policies/code-of-conduct.md" {
		t.Errorf("unexpected files %v", files)
	}
}
