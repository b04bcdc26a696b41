package cams

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cams-catalog/internal/components/telemetry"
	"cams-catalog/internal/scrapers/cams/camstest"

	"github.com/stretchr/testify/require"
)

const (
	testUsername  = "student"
	testPassword  = "hunter2"
	testTerm      = "27"
	testAccessKey = "f1e2d3c4"
)

func newTestClient(t testing.TB, baseUrl string, options ClientOptions) (*Client, *telemetry.TestingAPI) {
	tel := telemetry.NewTestingAPI(t)
	options.BaseUrl = baseUrl
	if options.RequestsPerSecond == 0 {
		options.RequestsPerSecond = 1000
	}
	client, err := NewClient(options, tel)
	if err != nil {
		t.Fatal(err)
	}
	return client, tel
}

func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	return ctx
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "not a url"}, telemetry.NewTestingAPI(t))
	require.Error(t, err)

	client, err := NewClient(ClientOptions{}, telemetry.NewTestingAPI(t))
	require.NoError(t, err)
	require.Equal(t, DefaultBaseUrl, client.BaseUrl.String())
	require.Equal(t, 8, client.options.MaxConcurrentPages)
	require.Equal(t, time.Second*30, client.options.Timeout)
}

func TestLogin(t *testing.T) {
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})

	session, err := client.Login(testContext(t), testUsername, testPassword, testTerm)
	require.NoError(t, err)
	require.NotNil(t, session)

	_, err = client.Login(testContext(t), testUsername, "wrong", testTerm)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Invalid username or password.", authErr.Message)
	require.Nil(t, authErr.Err)
}

func TestLoginTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, tel := newTestClient(t, server.URL, ClientOptions{})

	_, err := client.Login(testContext(t), testUsername, testPassword, testTerm)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.NotEmpty(t, tel.Broken())
}

func TestLoginGarbledResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, ClientOptions{})

	_, err := client.Login(testContext(t), testUsername, testPassword, testTerm)
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.ErrorIs(t, err, ErrParse)
}

func TestAuthErrorMessage(t *testing.T) {
	require.Equal(t, "cams: login failed: bad creds", (&AuthError{Message: "bad creds"}).Error())
	require.Equal(t, "cams: login failed: boom", (&AuthError{Err: errors.New("boom")}).Error())
	require.Equal(t, "cams: login failed", (&AuthError{}).Error())
}
