package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCreds is a test credential source
type fakeCreds struct {
	token   string
	cleared bool
}

func (f *fakeCreds) Token() string { return f.token }

func (f *fakeCreds) Clear() error {
	f.cleared = true
	f.token = ""
	return nil
}

func TestDoSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{token: "tok-123"})
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDoOmitsAuthWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestUnauthorizedClearsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "stale"}
	c := NewClient(srv.URL, creds)
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, creds.cleared)
}

func TestErrorMessageFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"email already registered"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodPost, "api/auth/register", map[string]string{"email": "a@b.c"})
	require.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusConflict, reqErr.Status)
	require.Equal(t, "email already registered", reqErr.Message)
}

func TestErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusInternalServerError, reqErr.Status)
	require.Contains(t, reqErr.Message, "500")
}

func TestEmptyBodyReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	data, err := c.do(context.Background(), http.MethodDelete, "api/sessions/s1", nil)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestInvalidJSONIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)
	require.ErrorIs(t, err, ErrDecode)
}

func TestConnectionFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodGet, "api/projects", nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	require.False(t, errors.Is(err, ErrUnauthorized))
}

func TestPathNormalization(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", &fakeCreds{})
	_, err := c.do(context.Background(), http.MethodGet, "//api/projects", nil)
	require.NoError(t, err)
	require.Equal(t, "/api/projects", gotPath)
}

func TestGetFileSentinelShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	data, err := c.GetFile(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Nil(t, data)
	require.False(t, called)

	data, err = c.GetFile(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, data)
	require.False(t, called)
}

func TestGetAudioStripsPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{})
	data, err := c.GetAudio(context.Background(), "/audio/clip-1")
	require.NoError(t, err)
	require.Equal(t, []byte("audio-bytes"), data)
	require.Equal(t, "/api/audio/clip-1", gotPath)
}

func TestSyncEmptyBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{token: "tok"})
	_, err := c.Sync(context.Background(), SyncRequest{DeviceID: "dev-1"})
	require.ErrorIs(t, err, ErrDecode)
}

func TestGetProjectParsesSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "p1",
			"name": "Alpha",
			"created_at": "2026-03-01T09:00:00Z",
			"sessions": [
				{"id": "s1", "projectId": "p1",
				 "startTime": "2026-03-01T09:00:00Z",
				 "endTime": "2026-03-01T09:01:05Z"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeCreds{token: "tok"})
	detail, err := c.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Alpha", detail.Project.Name)
	require.Len(t, detail.Sessions, 1)
	require.Equal(t, int64(65000), detail.Sessions[0].Duration)
}
