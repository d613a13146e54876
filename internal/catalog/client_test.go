package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeshelf/pkg/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(utils.CatalogConfig{
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	})
	// retries only slow the failure tests down
	c.http.SetRetryCount(0)
	return c, srv
}

func TestClientSearch(t *testing.T) {
	var hits int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "cowboy bebop", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"mal_id":5,"title":"Cowboy Bebop","episodes":26,"type":"TV"},
			{"mal_id":0,"title":"broken row"},
			{"mal_id":17205,"title":"Cowboy Bebop: Ein no Natsuyasumi"}
		]}`))
	})

	got := c.Search(context.Background(), "cowboy bebop", 5)
	require.Len(t, got, 2, "rows without a positive id are dropped")
	assert.Equal(t, 5, got[0].MalID)
	assert.Equal(t, 26, got[0].Episodes)

	// second identical query is served from cache
	_ = c.Search(context.Background(), "cowboy bebop", 5)
	assert.Equal(t, 1, hits)
}

func TestClientSearchEmptyQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty query")
	})
	assert.Nil(t, c.Search(context.Background(), "   ", 5))
}

func TestClientGetByID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/5/full", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"mal_id":5,"title":"Cowboy Bebop","episodes":26,
			"duration":"24 min per ep",
			"genres":[{"name":"Action"}],
			"streaming":[{"name":"Crunchyroll"}]
		}}`))
	})

	a := c.GetByID(context.Background(), 5)
	require.NotNil(t, a)
	assert.Equal(t, "Cowboy Bebop", a.Title)
	assert.Equal(t, 24, a.DurationMinutes)
	assert.Equal(t, []string{"Crunchyroll"}, a.StreamingPlatforms)
}

func TestClientGetByIDNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":404}`, http.StatusNotFound)
	})
	assert.Nil(t, c.GetByID(context.Background(), 123456789))
}

func TestClientSwallowsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := New(utils.CatalogConfig{BaseURL: url, Timeout: time.Second, CacheTTL: time.Minute})
	c.http.SetRetryCount(0)

	assert.Nil(t, c.GetByID(context.Background(), 5))
	assert.Empty(t, c.Search(context.Background(), "anything", 5))
	assert.Empty(t, c.GetSeason(context.Background(), 2024, "spring"))
}

func TestClientGetSeasonRejectsBadInput(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid season input")
	})
	assert.Nil(t, c.GetSeason(context.Background(), 0, "spring"))
	assert.Nil(t, c.GetSeason(context.Background(), 2024, "monsoon"))
}
