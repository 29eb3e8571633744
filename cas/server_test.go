package cas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cpk"
	"cpk/ceramic"
	"cpk/store"
)

func newTestServer(t *testing.T) (*store.Store, *httptest.Server) {
	s, err := store.NewStore(store.InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := NewServer(s)
	srv.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return s, ts
}

func TestServer(t *testing.T) {
	s, ts := newTestServer(t)

	config := DefaultClientConfig()
	config.URL = ts.URL + "/"
	config.NodePrivateKey = zeroSeed
	client, err := NewClient(config)
	require.NoError(t, err)
	require.Equal(t, ts.URL+"/api/v0/requests", client.RequestsURL())

	stream, err := ceramic.CreateStream(ceramic.ModelStream, zeroDID, true)
	require.NoError(t, err)
	root, data, err := stream.TipCAR(stream.Genesis, time.Now())
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("submit", func(t *testing.T) {
		resp, err := client.Submit(ctx, AnchorRequest{Root: root, CAR: data})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var r RequestJSON
		require.NoError(t, json.Unmarshal(resp.Body, &r))
		require.Equal(t, root.String(), r.ID)
		require.Equal(t, store.StatusPending, r.Status)
		require.Equal(t, stream.ID.String(), r.StreamID)
		require.Equal(t, stream.Genesis.Cid().String(), r.CID)
		require.Equal(t, int64(1700000000), r.CreatedAt.Unix())
	})

	t.Run("resubmit", func(t *testing.T) {
		resp, err := client.Submit(ctx, AnchorRequest{Root: root, CAR: data})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		n, err := s.CountRequests()
		require.NoError(t, err)
		require.Equal(t, uint(1), n)
	})

	t.Run("status", func(t *testing.T) {
		resp, err := client.Status(ctx, root)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var r RequestJSON
		require.NoError(t, json.Unmarshal(resp.Body, &r))
		require.Equal(t, root.String(), r.ID)
	})

	t.Run("status missing", func(t *testing.T) {
		_, err := client.Status(ctx, cpk.RandomCID())
		var se *StatusError
		require.True(t, errors.As(err, &se))
		require.Equal(t, http.StatusNotFound, se.Code)
	})

	t.Run("no auth", func(t *testing.T) {
		resp, err := http.Post(client.RequestsURL(), CARContentType, bytes.NewReader(data))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("digest mismatch", func(t *testing.T) {
		otherRoot, _, err := ceramic.CreateStreamCAR(ceramic.TileStream, "", true)
		require.NoError(t, err)

		_, err = client.Submit(ctx, AnchorRequest{Root: otherRoot, CAR: data})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		require.Equal(t, http.StatusUnauthorized, se.Code)
	})

	t.Run("car too large", func(t *testing.T) {
		_, err := client.Submit(ctx, AnchorRequest{Root: root, CAR: make([]byte, maxRequestSize+1)})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		require.Equal(t, http.StatusRequestEntityTooLarge, se.Code)
	})

	t.Run("other audience", func(t *testing.T) {
		for _, u := range []string{
			"http://other.example" + RequestsPath,
			ts.URL + "/api/v1/requests",
		} {
			header, err := client.Signer().AuthHeader(u, root)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, client.RequestsURL(), bytes.NewReader(data))
			require.NoError(t, err)
			req.Header.Set("Authorization", header)
			req.Header.Set("Content-Type", CARContentType)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, u)
		}
	})

	t.Run("bad car", func(t *testing.T) {
		_, err := client.Submit(ctx, AnchorRequest{Root: root, CAR: []byte("junk")})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		require.Equal(t, http.StatusBadRequest, se.Code)
	})

	t.Run("load", func(t *testing.T) {
		lc := DefaultLoadConfig()
		lc.Count = 10
		lc.Rate = 0
		res, err := Generate(ctx, client, lc)
		require.NoError(t, err)
		require.Equal(t, 10, res.Succeeded)

		n, err := s.CountRequests()
		require.NoError(t, err)
		require.Equal(t, uint(11), n)
	})
}
