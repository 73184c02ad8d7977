package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeChunk(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_000.mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write chunk: %v", err)
	}
	return path
}

func TestTranscribeFile(t *testing.T) {
	var gotModel, gotLanguage, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected auth header %q", auth)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Missing file part: %v", err)
		}
		file.Close()
		gotFile = header.Filename
		fmt.Fprint(w, `{"text": "hello world"}`)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	text, err := c.TranscribeFile(context.Background(), "whisper-1", writeChunk(t, "fake audio"), "en")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "hello world" {
		t.Errorf("Expected transcript 'hello world', got %q", text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("Expected model whisper-1, got %q", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("Expected language hint 'en', got %q", gotLanguage)
	}
	if gotFile != "chunk_000.mp3" {
		t.Errorf("Expected filename chunk_000.mp3, got %q", gotFile)
	}
}

func TestTranscribeFile_OmitsEmptyLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("Expected no language field")
		}
		fmt.Fprint(w, `{"text": ""}`)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	if _, err := c.TranscribeFile(context.Background(), "whisper-1", writeChunk(t, "x"), ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if payload["model"] != "gpt-4o-mini" {
			t.Errorf("Unexpected model %v", payload["model"])
		}
		if _, ok := payload["response_format"]; !ok {
			t.Error("Expected response_format in JSON-mode request")
		}
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"ok\": true}"}}]}`)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	content, err := c.ChatCompletion(context.Background(), "gpt-4o-mini", []ChatMessage{
		{Role: "user", Content: "hi"},
	}, 0.2, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if content != `{"ok": true}` {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestChatCompletion_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "response_format not supported"}}`)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	_, err := c.ChatCompletion(context.Background(), "m", nil, 0, true)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "response_format not supported" {
		t.Errorf("Unexpected message %q", apiErr.Message)
	}
}

func TestChatCompletion_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	if _, err := c.ChatCompletion(context.Background(), "m", nil, 0, false); err == nil {
		t.Fatal("Expected error for empty choices, got nil")
	}
}
