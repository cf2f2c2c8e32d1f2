package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func Test_TelegramSenderSend(t *testing.T) {
	t.Parallel()

	var form map[string]string
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		form = map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(server.URL, "123:secret", "-1001")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	err = sender.Send(context.Background(), Notification{Message: "<b>(New)</b> laptop connected"})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if path != "/bot123:secret/sendMessage" {
		t.Errorf("unexpected path: %v", path)
	}
	if form["chat_id"] != "-1001" || form["text"] != "<b>(New)</b> laptop connected" || form["parse_mode"] != "HTML" {
		t.Errorf("unexpected form: %v", form)
	}
}

func Test_TelegramSenderRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(server.URL, "123:secret", "-1001")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	err = sender.Send(context.Background(), Notification{Message: "hello"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatal("expected status error, got:", err)
	}
}

func Test_TelegramSenderRedactsToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	sender, err := NewTelegramSender(url, "123:secret", "-1001")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	err = sender.Send(context.Background(), Notification{Message: "hello"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("token leaked into error: %v", err)
	}
}

func Test_NewTelegramSenderInvalid(t *testing.T) {
	t.Parallel()

	data := map[string]struct {
		baseUrl string
		token   string
		chatId  string
	}{
		"missing token":   {"", "", "-1001"},
		"missing chat id": {"", "123:secret", ""},
		"bad scheme":      {"ftp://api.telegram.org", "123:secret", "-1001"},
	}

	for name, d := range data {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewTelegramSender(d.baseUrl, d.token, d.chatId); err == nil {
				t.Error("expected error")
			}
		})
	}
}
