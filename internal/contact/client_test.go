package contact

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

var message = domain.Buyer{Name: "Grace", Email: "grace@example.com", Message: "Need a quote"}

func TestSendPostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Grace", r.PostForm.Get("name"))
		assert.Equal(t, "grace@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "Need a quote", r.PostForm.Get("message"))
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	result, err := client.Send(context.Background(), "v1", message)
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Notice: SuccessNotice}, result)
}

func TestSendReportsBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","message":"All fields are required."}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	result, err := client.Send(context.Background(), "v1", domain.Buyer{Name: "Grace"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "All fields are required.", result.Notice)
}

func TestSendGenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	result, err := client.Send(context.Background(), "v1", message)
	require.NoError(t, err)
	assert.Equal(t, GenericFailure, result.Notice)
}

func TestSendRejectsOverlap(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-unblock
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := client.Send(context.Background(), "v1", message)
		assert.NoError(t, err)
	}()
	<-entered

	result, err := client.Send(context.Background(), "v1", message)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, InFlightMessage, result.Notice)

	close(unblock)
	<-done
}
