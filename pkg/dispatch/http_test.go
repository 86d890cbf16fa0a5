package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPDispatcherSend(t *testing.T) {
	var captured sendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"messageId": "msg-123"})
	}))
	defer server.Close()

	d := NewHTTPDispatcher(server.URL, "secret", Sender{Name: "HR Team", Email: "hr@example.com"})

	messageID, err := d.Send(context.Background(), Email{
		To:       "ada@example.com",
		Subject:  "Offer",
		HTMLBody: "<p>Congratulations</p>",
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if messageID != "msg-123" {
		t.Fatalf("expected message id msg-123, got %q", messageID)
	}

	if captured.Sender.Email != "hr@example.com" || captured.Sender.Name != "HR Team" {
		t.Fatalf("unexpected sender %+v", captured.Sender)
	}
	if len(captured.To) != 1 || captured.To[0].Email != "ada@example.com" {
		t.Fatalf("unexpected recipients %+v", captured.To)
	}
	if captured.Subject != "Offer" || captured.HTMLContent != "<p>Congratulations</p>" {
		t.Fatalf("unexpected content %+v", captured)
	}
}

func TestHTTPDispatcherNonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer server.Close()

	d := NewHTTPDispatcher(server.URL, "secret", Sender{Email: "hr@example.com"})

	_, err := d.Send(context.Background(), Email{To: "bad", Subject: "x", HTMLBody: "y"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}

func TestHTTPDispatcherNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	d := NewHTTPDispatcher(server.URL, "secret", Sender{Email: "hr@example.com"})

	if _, err := d.Send(context.Background(), Email{To: "a@b.c"}); err == nil {
		t.Fatal("expected error when provider is unreachable")
	}
}
