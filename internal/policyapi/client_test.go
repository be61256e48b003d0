package policyapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DeafMist/policy-depot/internal/policyapi"
	"github.com/stretchr/testify/require"
)

type capture struct {
	path   string
	apiKey string
	method string
}

func upstream(t *testing.T, status int, contentType, body string) (*httptest.Server, *capture) {
	t.Helper()
	seen := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.EscapedPath()
		seen.apiKey = r.Header.Get(policyapi.APIKeyHeader)
		seen.method = r.Method
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestFetchSuccessReturnsPayloadVerbatim(t *testing.T) {
	body := `{"title":"Auto","company":"ACME","date":"2024-01-01","tags":["A","B"],"related":["X"],"articles":[{"name":"intro","description":"desc"}]}`
	srv, seen := upstream(t, http.StatusOK, "application/json", body)

	client := policyapi.New(srv.URL+"/", "secret")
	res := client.Fetch(context.Background(), "ABC123")

	require.Equal(t, http.MethodGet, seen.method)
	require.Equal(t, "/api/v1/policy/ABC123", seen.path)
	require.Equal(t, "secret", seen.apiKey)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Nil(t, res.Failure)
	require.Equal(t, policyapi.KindDocument, res.Kind())
	require.Equal(t, "Auto", res.Payload["title"])
	require.Equal(t, []any{"A", "B"}, res.Payload["tags"])
	require.Empty(t, res.Detail())
}

func TestFetchErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantKind   policyapi.Kind
	}{
		{name: "json detail", status: http.StatusNotFound, body: `{"detail":"Policy not found"}`, wantDetail: "Policy not found", wantKind: policyapi.KindNotFound},
		{name: "plain text", status: http.StatusBadGateway, body: "upstream exploded\n", wantDetail: "upstream exploded", wantKind: policyapi.KindError},
		{name: "empty body", status: http.StatusInternalServerError, body: "", wantDetail: policyapi.DefaultDetail, wantKind: policyapi.KindError},
		{name: "json without detail", status: http.StatusForbidden, body: `{"message":"nope"}`, wantDetail: `{"message":"nope"}`, wantKind: policyapi.KindError},
		{name: "structured detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["path","id"]}]}`, wantDetail: `[{"loc":["path","id"]}]`, wantKind: policyapi.KindError},
		{name: "blank detail", status: http.StatusBadRequest, body: `{"detail":""}`, wantDetail: policyapi.DefaultDetail, wantKind: policyapi.KindError},
		{name: "null detail", status: http.StatusConflict, body: `{"detail":null}`, wantDetail: `{"detail":null}`, wantKind: policyapi.KindError},
		{name: "not found with html", status: http.StatusNotFound, body: "<html>missing</html>", wantDetail: "<html>missing</html>", wantKind: policyapi.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := upstream(t, tt.status, "", tt.body)
			res := policyapi.New(srv.URL, "k").Fetch(context.Background(), "X1")

			require.Equal(t, tt.status, res.StatusCode)
			require.NotNil(t, res.Payload)
			require.Equal(t, map[string]any{"detail": tt.wantDetail}, res.Payload)
			require.NotNil(t, res.Failure)
			require.Equal(t, tt.wantDetail, res.Detail())
			require.Equal(t, tt.wantKind, res.Kind())
		})
	}
}

func TestFetchDoesNotFollowRedirects(t *testing.T) {
	var otherHits int
	var otherKey string
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		otherHits++
		otherKey = r.Header.Get(policyapi.APIKeyHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"from elsewhere"}`))
	}))
	t.Cleanup(other.Close)

	var apiHits int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHits++
		http.Redirect(w, r, other.URL+"/moved", http.StatusFound)
	}))
	t.Cleanup(api.Close)

	clients := map[string]*policyapi.Client{
		"default client":  policyapi.New(api.URL, "secret"),
		"injected client": policyapi.New(api.URL, "secret", policyapi.WithHTTPClient(&http.Client{})),
	}

	for name, client := range clients {
		t.Run(name, func(t *testing.T) {
			apiHits, otherHits, otherKey = 0, 0, ""

			res := client.Fetch(context.Background(), "ABC123")

			require.Equal(t, http.StatusFound, res.StatusCode)
			require.Equal(t, policyapi.KindError, res.Kind())
			require.NotNil(t, res.Failure)
			require.NotContains(t, res.Payload, "title")
			require.Equal(t, 1, apiHits)
			require.Zero(t, otherHits)
			require.Empty(t, otherKey)
		})
	}
}

func TestWithHTTPClientLeavesCallerClientUntouched(t *testing.T) {
	hc := &http.Client{}
	policyapi.New("http://localhost:8000", "k", policyapi.WithHTTPClient(hc))
	require.Nil(t, hc.CheckRedirect)
}

func TestFetchTransportFailureMapsTo500(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	res := policyapi.New(base, "k").Fetch(context.Background(), "ABC")

	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, policyapi.KindError, res.Kind())
	detail, ok := res.Payload["detail"].(string)
	require.True(t, ok)
	require.Contains(t, detail, "connection refused")
	require.ErrorContains(t, res.Failure, "status 500")
}

func TestFetchMalformedSuccessBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "not json", body: "<html>oops</html>", want: "decode response body"},
		{name: "empty", body: "", want: "decode response body"},
		{name: "array", body: `["a","b"]`, want: "expected a JSON object, got array"},
		{name: "null", body: `null`, want: "expected a JSON object, got null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := upstream(t, http.StatusOK, "application/json", tt.body)
			res := policyapi.New(srv.URL, "k").Fetch(context.Background(), "ABC")

			require.Equal(t, http.StatusInternalServerError, res.StatusCode)
			require.Equal(t, policyapi.KindError, res.Kind())
			require.Contains(t, res.Detail(), tt.want)
			require.Contains(t, res.Payload["detail"], tt.want)
		})
	}
}

func TestFetchEmptyObjectIsAnError(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK, "application/json", `{}`)
	res := policyapi.New(srv.URL, "k").Fetch(context.Background(), "ABC")

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Payload)
	require.Equal(t, policyapi.KindError, res.Kind())
}

func TestFetchNonOKSuccessIsNotRendered(t *testing.T) {
	srv, _ := upstream(t, http.StatusAccepted, "application/json", `{"title":"queued"}`)
	res := policyapi.New(srv.URL, "k").Fetch(context.Background(), "ABC")

	require.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Nil(t, res.Failure)
	require.Equal(t, policyapi.KindError, res.Kind())
}

func TestFetchCanceledContext(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK, "application/json", `{"title":"x"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := policyapi.New(srv.URL, "k").Fetch(ctx, "ABC")
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Contains(t, res.Detail(), "context canceled")
}

func TestFetchBadBaseURL(t *testing.T) {
	res := policyapi.New("://missing-scheme", "k").Fetch(context.Background(), "ABC")
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.NotEmpty(t, res.Detail())
}

func TestEndpointEscapesIdentifier(t *testing.T) {
	client := policyapi.New("https://api.example.com/", "k")
	require.Equal(t, "https://api.example.com/api/v1/policy/ABC123", client.Endpoint("ABC123"))
	require.Equal(t, "https://api.example.com/api/v1/policy/A%2FB%20C", client.Endpoint("A/B C"))
}

func TestNormalizeIdentifier(t *testing.T) {
	require.Equal(t, "ABC123", policyapi.NormalizeIdentifier("  abc123  "))
	require.Equal(t, policyapi.NormalizeIdentifier("ABC123"), policyapi.NormalizeIdentifier("  abc123  "))
	require.Equal(t, "", policyapi.NormalizeIdentifier(" \t\n"))
	require.Equal(t, "PÓLIZA-7", policyapi.NormalizeIdentifier("póliza-7"))
}

func TestFetchIdentifierNormalizationReachesSamePath(t *testing.T) {
	srv, seen := upstream(t, http.StatusOK, "application/json", `{"title":"t"}`)
	client := policyapi.New(srv.URL, "k")

	client.Fetch(context.Background(), policyapi.NormalizeIdentifier("  abc123  "))
	first := seen.path
	client.Fetch(context.Background(), policyapi.NormalizeIdentifier("ABC123"))
	require.Equal(t, first, seen.path)
	require.True(t, strings.HasSuffix(first, "/ABC123"))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "document", policyapi.KindDocument.String())
	require.Equal(t, "not_found", policyapi.KindNotFound.String())
	require.Equal(t, "error", policyapi.KindError.String())
}

func TestResultDocument(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK, "application/json", `{"title":"Auto","tags":[]}`)
	doc := policyapi.New(srv.URL, "k").Fetch(context.Background(), "A").Document()

	require.Equal(t, "Auto", *doc.Title)
	require.Empty(t, doc.Tags)
	require.Nil(t, doc.Articles)
}
