package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/client"
	"github.com/sagarc03/gsutil/internal/gcstest"
	"github.com/sagarc03/gsutil/oauth"
	"github.com/sagarc03/gsutil/transport"
)

type staticProvider struct {
	tok *oauth2.Token
}

func (p staticProvider) Token(context.Context, []string) (*oauth2.Token, *oauth.PendingRequest, error) {
	return p.tok, nil, nil
}

func (p staticProvider) ParseTokenResponse(context.Context, string, *transport.Response) (*oauth2.Token, error) {
	return nil, errors.New("unexpected call")
}

func newClient(t *testing.T, server *gcstest.Server) *client.Client {
	t.Helper()
	provider, err := oauth.NewServiceAccount(gcstest.ServiceAccountKey(t, server.TokenURL()))
	require.NoError(t, err)
	return client.New(transport.New(), provider)
}

func objectRequest(server *gcstest.Server, bucket, object string) *transport.Request {
	return transport.NewRequest(http.MethodGet, server.URL+"/storage/v1/b/"+bucket+"/o/"+object, nil)
}

func TestExecute_EndToEnd(t *testing.T) {
	server := gcstest.NewServer(t)
	server.PutObject("bucket-a", "obj.txt", []byte("hello world"), "text/plain", map[string]string{"owner": "qa"})
	c := newClient(t, server)

	id, err := gsutil.ParseURL("gs://bucket-a/obj.txt")
	require.NoError(t, err)

	obj, err := client.Execute(context.Background(), c, objectRequest(server, id.Bucket, id.Object), client.JSON[storage.Object]())
	require.NoError(t, err)

	assert.EqualValues(t, 1, server.Mints(), "exactly one token mint")
	assert.EqualValues(t, 1, server.APICalls(), "exactly one authenticated call")

	assert.Equal(t, "bucket-a", obj.Bucket)
	assert.Equal(t, "obj.txt", obj.Name)
	assert.EqualValues(t, 11, obj.Size)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, "qa", obj.Metadata["owner"])

	_, err = client.Execute(context.Background(), c, objectRequest(server, id.Bucket, id.Object), client.JSON[storage.Object]())
	require.NoError(t, err)
	assert.EqualValues(t, 1, server.Mints(), "cached token is reused")
	assert.EqualValues(t, 2, server.APICalls())
}

func TestExecute_NotFound(t *testing.T) {
	server := gcstest.NewServer(t)
	server.AddBucket("p", "bucket-a")
	c := newClient(t, server)

	_, err := client.Execute(context.Background(), c, objectRequest(server, "bucket-a", "missing"), client.JSON[storage.Object]())
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "No such object: bucket-a/missing", apiErr.Message)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, err, gsutil.ErrAPI)
	assert.NotErrorIs(t, err, gsutil.ErrTransport)
}

func TestExecute_MintFailureIsAuthError(t *testing.T) {
	server := gcstest.NewServer(t)
	server.FailTokenRequests(1)
	c := newClient(t, server)

	_, err := client.Execute(context.Background(), c, objectRequest(server, "bucket-a", "obj"), client.Discard())
	require.Error(t, err)

	var authErr *oauth.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "mint token", authErr.Op)
	assert.ErrorIs(t, err, gsutil.ErrAuth)

	var parseErr *oauth.TokenParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "invalid_grant", parseErr.Code)
	assert.EqualValues(t, 0, server.APICalls(), "failed mint must not dispatch the request")
}

func TestExecute_TokenEndpointUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	provider, err := oauth.NewServiceAccount(gcstest.ServiceAccountKey(t, deadURL+"/token"))
	require.NoError(t, err)
	c := client.New(transport.New(), provider)

	_, err = client.Execute(context.Background(), c, transport.NewRequest(http.MethodGet, deadURL, nil), client.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, gsutil.ErrAuth)
}

func TestExecute_InvalidTokenHeader(t *testing.T) {
	c := client.New(transport.New(), staticProvider{tok: &oauth2.Token{AccessToken: "bad\ntoken", Expiry: time.Now().Add(time.Hour)}})

	_, err := client.Execute(context.Background(), c, transport.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil), client.Discard())
	require.Error(t, err)

	var authErr *oauth.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "attach token", authErr.Op)
}

func TestExecute_SchemaMismatchIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer static", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": 42}`))
	}))
	defer server.Close()

	c := client.New(transport.New(), staticProvider{tok: &oauth2.Token{AccessToken: "static", TokenType: "Bearer"}})

	_, err := client.Execute(context.Background(), c, transport.NewRequest(http.MethodGet, server.URL, nil), client.JSON[storage.Object]())
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "decode response")
}

func TestExecute_TransportErrorPassesThrough(t *testing.T) {
	c := client.New(transport.New(), staticProvider{tok: &oauth2.Token{AccessToken: "static"}})

	_, err := client.Execute(context.Background(), c, transport.NewRequest(http.MethodHead, "http://127.0.0.1:1", nil), client.Discard())
	require.Error(t, err)

	var unsupported *transport.UnsupportedMethodError
	assert.True(t, errors.As(err, &unsupported))
	assert.ErrorIs(t, err, gsutil.ErrTransport)
}

func TestParseAPIError(t *testing.T) {
	tt := []struct {
		Name       string
		Status     int
		Body       string
		WantMsg    string
		WantReason string
	}{
		{Name: "json envelope", Status: 403, Body: `{"error":{"code":403,"message":"denied","errors":[{"reason":"forbidden","message":"denied"}]}}`, WantMsg: "denied", WantReason: "forbidden"},
		{Name: "plain text", Status: 500, Body: "backend exploded\n", WantMsg: "backend exploded"},
		{Name: "empty body", Status: 503, Body: "", WantMsg: "Service Unavailable"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			err := client.ParseAPIError(&transport.Response{StatusCode: tc.Status, Body: []byte(tc.Body)})
			assert.Equal(t, tc.Status, err.StatusCode)
			assert.Equal(t, tc.WantMsg, err.Message)
			assert.Equal(t, tc.WantReason, err.Reason)
		})
	}
}
