package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepositoriesFollowsNext(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/repositories/acme/", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"count":3,"next":"%s/v2/repositories/acme/?page=2","results":[{"namespace":"acme","name":"web"},{"namespace":"acme","name":"api"}]}`, srv.URL)
		case "2":
			fmt.Fprint(w, `{"count":3,"next":null,"results":[{"namespace":"acme","name":"worker"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	repos, err := c.ListRepositories(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "acme/web", repos[0].FullName())
	assert.Equal(t, "acme/worker", repos[2].FullName())
}

func TestListRepositoriesStopsOnRepeatedNext(t *testing.T) {
	var requests atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"count":2,"next":"%s/v2/repositories/acme/?page=2","results":[{"namespace":"acme","name":"web"}]}`, srv.URL)
		default:
			// 第二页又指回第一页
			fmt.Fprintf(w, `{"count":2,"next":"%s/v2/repositories/acme/?page_size=100","results":[{"namespace":"acme","name":"api"}]}`, srv.URL)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(Options{BaseURL: srv.URL})
	repos, err := c.ListRepositories(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "acme/api", repos[1].FullName())
	assert.EqualValues(t, 2, requests.Load())
}

func TestListRepositoriesSelfReferencingNext(t *testing.T) {
	var requests atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprintf(w, `{"count":1,"next":"%s%s","results":[{"namespace":"acme","name":"web"}]}`, srv.URL, r.URL.RequestURI())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(Options{BaseURL: srv.URL})
	repos, err := c.ListRepositories(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.EqualValues(t, 1, requests.Load())
}

func TestTokenOnlySentToHub(t *testing.T) {
	var foreignAuth atomic.Value
	foreignAuth.Store("unset")
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignAuth.Store(r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"count":2,"next":null,"results":[{"namespace":"acme","name":"api"}]}`)
	}))
	defer foreign.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		fmt.Fprintf(w, `{"count":2,"next":"%s/v2/repositories/acme/?page=2","results":[{"namespace":"acme","name":"web"}]}`, foreign.URL)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	c.SetToken("s3cret")

	repos, err := c.ListRepositories(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, repos, 2)
	assert.Equal(t, "", foreignAuth.Load())
}

func TestRelativeNextKeepsToken(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count":2,"next":null,"results":[{"namespace":"acme","name":"api"}]}`)
			return
		}
		fmt.Fprint(w, `{"count":2,"next":"/v2/repositories/acme/?page=2","results":[{"namespace":"acme","name":"web"}]}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	c.SetToken("s3cret")

	repos, err := c.ListRepositories(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, repos, 2)
	assert.EqualValues(t, 2, pages.Load())
}

func TestGetRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/repositories/acme/web/", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"namespace":"acme","name":"web","pull_count":1234,"star_count":5}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	c.SetToken("s3cret")

	repo, err := c.GetRepository(context.Background(), "acme", "web")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), repo.PullCount)
	assert.Equal(t, int64(5), repo.StarCount)
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.ListRepositories(context.Background(), "acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	_, err := c.GetRepository(context.Background(), "acme", "web")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "502")
}

func TestListRepositoriesEmptyAccount(t *testing.T) {
	c := NewClient(Options{})
	_, err := c.ListRepositories(context.Background(), "")
	assert.Error(t, err)
}

func TestListTags(t *testing.T) {
	t.Setenv("DOCKER_CONFIG", t.TempDir())

	srv := httptest.NewServer(registry.New())
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	img, err := random.Image(256, 1)
	require.NoError(t, err)
	for _, tag := range []string{"v1", "v2"} {
		ref, err := name.NewTag(host+"/acme/web:"+tag, name.Insecure)
		require.NoError(t, err)
		require.NoError(t, remote.Write(ref, img))
	}

	c := NewClient(Options{Registry: host, Insecure: true})
	tags, err := c.ListTags(context.Background(), "acme", "web")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Tag{{Name: "v1"}, {Name: "v2"}}, tags)
}

// basicAuthRegistry 只接受 acme:s3cret 的 Basic 认证
func basicAuthRegistry() http.Handler {
	reg := registry.New()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "acme" || pass != "s3cret" {
			w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		reg.ServeHTTP(w, r)
	})
}

func TestListTagsWithAccountToken(t *testing.T) {
	t.Setenv("DOCKER_CONFIG", t.TempDir())

	srv := httptest.NewServer(basicAuthRegistry())
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	img, err := random.Image(256, 1)
	require.NoError(t, err)
	ref, err := name.NewTag(host+"/acme/private:v1", name.Insecure)
	require.NoError(t, err)
	require.NoError(t, remote.Write(ref, img, remote.WithAuth(&authn.Basic{Username: "acme", Password: "s3cret"})))

	c := NewClient(Options{Registry: host, Account: "acme", Insecure: true})
	_, err = c.ListTags(context.Background(), "acme", "private")
	require.Error(t, err, "anonymous access should be rejected")

	c.SetToken("s3cret")
	tags, err := c.ListTags(context.Background(), "acme", "private")
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Name: "v1"}}, tags)
}
