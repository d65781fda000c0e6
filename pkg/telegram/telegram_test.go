package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsMessageWithToken(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody sendMessagePayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Token: "tok"}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, client.Notify(context.Background(), 42, "hello"))
	require.Equal(t, "/sendMessage", gotPath)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, int64(42), gotBody.ChatID)
	require.Equal(t, "hello", gotBody.Text)
}

func TestNotifyPhotoPostsCaption(t *testing.T) {
	var gotBody sendPhotoPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sendPhoto", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, client.NotifyPhoto(context.Background(), 7, "https://img.example/p.jpg", "caption"))
	require.Equal(t, int64(7), gotBody.ChatID)
	require.Equal(t, "https://img.example/p.jpg", gotBody.Photo)
	require.Equal(t, "caption", gotBody.Caption)
}

func TestNotifySurfacesGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)

	err = client.Notify(context.Background(), 1, "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}

func TestNotifySurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)

	err = client.Notify(context.Background(), 1, "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	require.Error(t, err)
}
