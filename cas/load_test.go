package cas

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"cpk/car"
)

func TestGenerate(t *testing.T) {
	defer goleak.VerifyNone(t)

	config := DefaultLoadConfig()
	config.Rate = 0
	config.Count = 20
	config.Concurrency = 4

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)
		s.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(config.Count).DoAndReturn(
			func(_ context.Context, req AnchorRequest) (Response, error) {
				roots, _, err := car.Blocks(bytes.NewReader(req.CAR))
				if err != nil {
					return Response{}, err
				}
				if len(roots) != 1 || !roots[0].Equals(req.Root) {
					return Response{}, errors.New("root mismatch")
				}
				return Response{StatusCode: 201}, nil
			})

		res, err := Generate(context.Background(), s, config)
		require.NoError(t, err)
		require.Equal(t, config.Count, res.Sent)
		require.Equal(t, config.Count, res.Succeeded)
		require.Zero(t, res.Failed)
		require.Empty(t, res.Errors)
		require.Greater(t, res.Mean, 0.0)
		require.GreaterOrEqual(t, res.P999, res.P99)
	})

	t.Run("failures are not retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)
		var calls atomic.Int32
		s.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(config.Count).DoAndReturn(
			func(context.Context, AnchorRequest) (Response, error) {
				if calls.Add(1)%2 == 0 {
					return Response{StatusCode: 500}, badCodeError(500, []byte("boom"))
				}
				return Response{StatusCode: 201}, nil
			})

		res, err := Generate(context.Background(), s, config)
		require.NoError(t, err)
		require.Equal(t, config.Count, res.Sent)
		require.Equal(t, config.Count/2, res.Succeeded)
		require.Equal(t, config.Count/2, res.Failed)
		require.Len(t, res.Errors, config.Count/2)
		require.Equal(t, "bad response code: 500: boom", res.Errors[0])
	})

	t.Run("unique streams", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)
		seen := make(chan string, config.Count)
		s.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(config.Count).DoAndReturn(
			func(_ context.Context, req AnchorRequest) (Response, error) {
				seen <- req.Root.String()
				return Response{StatusCode: 201}, nil
			})

		_, err := Generate(context.Background(), s, config)
		require.NoError(t, err)
		close(seen)

		roots := make(map[string]struct{})
		for r := range seen {
			roots[r] = struct{}{}
		}
		require.Len(t, roots, config.Count)
	})

	t.Run("rate limited", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)
		s.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(5).Return(Response{StatusCode: 201}, nil)

		c := config
		c.Count = 5
		c.Rate = 50
		start := time.Now()
		res, err := Generate(context.Background(), s, c)
		require.NoError(t, err)
		require.Equal(t, 5, res.Succeeded)
		// The first token is free, the other four wait 20ms each
		require.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := Generate(ctx, s, config)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, res.Sent)
	})

	t.Run("cancel waits for in flight", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewMockSubmitter(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
			func(ctx context.Context, _ AnchorRequest) (Response, error) {
				cancel()
				time.Sleep(10 * time.Millisecond)
				return Response{StatusCode: 201}, ctx.Err()
			})

		c := config
		c.Concurrency = 1
		c.Rate = 10
		res, err := Generate(ctx, s, c)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, res.Sent)
		require.Equal(t, 1, res.Succeeded)
	})

	t.Run("zero count", func(t *testing.T) {
		_, err := Generate(context.Background(), NewMockSubmitter(gomock.NewController(t)), LoadConfig{})
		require.Error(t, err)
	})
}
