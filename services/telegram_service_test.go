package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramServiceSendMessage(t *testing.T) {
	var gotPath string
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tg := NewTelegramService(server.URL+"/", "123:abc")
	err := tg.SendMessage(context.Background(), "42", "<b>ciao</b>")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "<b>ciao</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
}

func TestTelegramServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()
	ctx := context.Background()

	tg := NewTelegramService(server.URL, "123:abc")
	err := tg.SendMessage(ctx, "42", "hi")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:abc")

	assert.Error(t, tg.SendMessage(ctx, "", "hi"), "chat id is required")
	assert.Error(t, NewTelegramService(server.URL, "").SendMessage(ctx, "42", "hi"), "token is required")
}
