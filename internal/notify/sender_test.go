package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressBookLookup(t *testing.T) {
	b := AddressBook{"Elia": " elia@example.org ", "Papà": ""}

	addr, ok := b.Lookup("Elia")
	assert.True(t, ok)
	assert.Equal(t, "elia@example.org", addr)

	_, ok = b.Lookup("Papà")
	assert.False(t, ok)
	_, ok = b.Lookup("Zio")
	assert.False(t, ok)
}

func TestSMTPSender(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s := &SMTPSender{
		Host:     "smtp.example.org",
		Port:     587,
		From:     "ledger@example.org",
		Username: "ledger",
		Password: "secret",
		sendMail: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
			return nil
		},
	}

	require.NoError(t, s.Send(context.Background(), "elia@example.org", "pay Mamma"))
	assert.Equal(t, "smtp.example.org:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "ledger@example.org", gotFrom)
	assert.Equal(t, []string{"elia@example.org"}, gotTo)
	assert.Contains(t, gotMsg, "To: elia@example.org\r\n")
	assert.Contains(t, gotMsg, "Subject: "+Subject+"\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\npay Mamma\r\n")
}

func TestSMTPSenderError(t *testing.T) {
	s := &SMTPSender{
		Host: "localhost",
		Port: 25,
		sendMail: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("relay denied")
		},
	}
	err := s.Send(context.Background(), "elia@example.org", "x")
	assert.ErrorContains(t, err, "relay denied")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "elia@example.org", "x"), context.Canceled)
}

func TestWebhookSender(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := &WebhookSender{URL: srv.URL, Client: srv.Client()}
	require.NoError(t, s.Send(context.Background(), "@elia", "pay Mamma"))
	assert.Equal(t, webhookPayload{To: "@elia", Subject: Subject, Text: "pay Mamma"}, got)
}

func TestWebhookSenderRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := &WebhookSender{URL: srv.URL}
	err := s.Send(context.Background(), "@elia", "x")
	assert.ErrorContains(t, err, "502")
}

func TestLogSender(t *testing.T) {
	assert.ErrorIs(t, LogSender{}.Send(context.Background(), "elia", "x"), ErrDryRun)
}
