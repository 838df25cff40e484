package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"concoro/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_NoopWithoutKey(t *testing.T) {
	s := NewSender(config.BrevoConfig{}, nil)
	_, err := s.Send(context.Background(), Message{To: "a@b.it"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestBrevo_Send(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<abc@smtp>"}`))
	}))
	defer srv.Close()

	b := NewBrevo(config.BrevoConfig{
		APIKey:      "secret",
		BaseURL:     srv.URL + "/v3/",
		SenderEmail: "notifiche@concoro.it",
		SenderName:  "Concoro",
	}, nil)

	id, err := b.Send(context.Background(), Message{To: "mario@example.it", ToName: "Mario", Subject: "Ciao", HTML: "<p>x</p>", Tags: []string{"deadline"}})
	require.NoError(t, err)
	assert.Equal(t, "<abc@smtp>", id)
	assert.Equal(t, "notifiche@concoro.it", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "mario@example.it", got.To[0].Email)
	assert.Equal(t, "<p>x</p>", got.HTMLContent)
	assert.Equal(t, []string{"deadline"}, got.Tags)
}

func TestBrevo_SendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter","message":"email is not valid"}`))
	}))
	defer srv.Close()

	b := NewBrevo(config.BrevoConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := b.Send(context.Background(), Message{To: "nope", Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is not valid")
	assert.False(t, errors.Is(err, ErrDisabled))
}

func TestBrevo_SendDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewBrevo(config.BrevoConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := b.Send(context.Background(), Message{To: "a@b.it", Subject: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRenderTemplates(t *testing.T) {
	html, err := RenderDeadline(DeadlineData{Nome: "Anna", Titolo: "Istruttore <amministrativo>", DaysLeft: 3, URL: "https://www.concoro.it/concorsi/x"})
	require.NoError(t, err)
	assert.Contains(t, html, "scade tra 3 giorni")
	assert.Contains(t, html, "Istruttore &lt;amministrativo&gt;")
	assert.Contains(t, html, `href="https://www.concoro.it/concorsi/x"`)

	html, err = RenderMatch(MatchData{Titolo: "Infermiere", Reasons: []string{"Regione: Lazio"}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "<li>Regione: Lazio</li>"))

	assert.Equal(t, "Scade oggi: X", DeadlineSubject("X", 0))
	assert.Equal(t, "Scade domani: X", DeadlineSubject("X", 1))
	assert.Equal(t, "Scade tra 7 giorni: X", DeadlineSubject("X", 7))
}
