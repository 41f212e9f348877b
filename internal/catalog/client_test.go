package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/pkg/logger"
)

func TestAlbums_SingleRequestForDistinctKeys(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v1/albums", r.URL.Path)
		assert.Equal(t, "42,7", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":42,"title":"Kind of Blue","artist":"Miles Davis","year":1959},
			{"id":"7","title":"Blue Train","artist":"John Coltrane"}
		]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", Form: identity.Numeric}, logger.Discard())
	albums := c.Albums(context.Background(), []identity.Key{
		identity.NumericKey(42), identity.NumericKey(7), identity.NumericKey(42),
	})

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, albums, 2)
	assert.Equal(t, "Kind of Blue", albums[identity.NumericKey(42)].Title)
	assert.Equal(t, 1959, albums[identity.NumericKey(42)].Year)
	assert.Equal(t, "Blue Train", albums[identity.NumericKey(7)].Title)
}

func TestAlbums_DegradesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Form: identity.Numeric}, logger.Discard())
	albums := c.Albums(context.Background(), []identity.Key{identity.NumericKey(1)})

	assert.NotNil(t, albums)
	assert.Empty(t, albums)
}

func TestAlbums_SkipsMalformedIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"` + oid.Hex() + `","title":"A"},{"id":"nope","title":"B"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Form: identity.Opaque}, logger.Discard())
	albums := c.Albums(context.Background(), []identity.Key{identity.OpaqueKey(oid)})

	require.Len(t, albums, 1)
	assert.Equal(t, "A", albums[identity.OpaqueKey(oid)].Title)
}

func TestAlbums_Disabled(t *testing.T) {
	c := New(Config{}, logger.Discard())
	assert.Nil(t, c)

	albums := c.Albums(context.Background(), []identity.Key{identity.NumericKey(1)})
	assert.Empty(t, albums)
}
