package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"connect-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Bytes(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()
	ctx := context.Background()

	_, found, err := c.GetBytes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetBytes(ctx, "k", []byte(`{"step":1}`), time.Minute))
	got, found, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"step":1}`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisClient_Errors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewRedisFromClient(rdb)
	ctx := context.Background()

	mock.ExpectGet("wizard:k").SetErr(errors.New("READONLY replica"))
	mock.ExpectSet("wizard:k", []byte("v"), time.Hour).SetErr(errors.New("OOM"))
	mock.ExpectDel("wizard:k").SetVal(1)

	_, found, err := c.GetBytes(ctx, "wizard:k")
	assert.EqualError(t, err, "READONLY replica")
	assert.False(t, found)
	assert.EqualError(t, c.SetBytes(ctx, "wizard:k", []byte("v"), time.Hour), "OOM")
	assert.NoError(t, c.Del(ctx, "wizard:k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestPostgresClient_InTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	c := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = c.InTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO audit_log (event) VALUES ($1)", "x")
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err = c.InTx(context.Background(), func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type esRecorder struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
	indexed  bool
}

func newESServer(t *testing.T, rec *esRecorder) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.bodies = append(rec.bodies, string(body))
		exists := rec.indexed
		rec.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && !exists:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && !strings.Contains(r.URL.Path, "_doc"):
			rec.mu.Lock()
			rec.indexed = true
			rec.mu.Unlock()
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestElasticsearchClient_EnsureIndexAndIndexDocument(t *testing.T) {
	rec := &esRecorder{}
	srv := newESServer(t, rec)

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.EnsureIndex(ctx, "reviews", `{"mappings":{}}`))
	require.NoError(t, c.EnsureIndex(ctx, "reviews", `{"mappings":{}}`))
	require.NoError(t, c.IndexDocument(ctx, "reviews", "app-1", map[string]string{"tier": "premium"}))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{
		"HEAD /reviews",
		"PUT /reviews",
		"HEAD /reviews",
		"PUT /reviews/_doc/app-1",
	}, rec.requests)
	assert.JSONEq(t, `{"tier":"premium"}`, rec.bodies[3])
}
