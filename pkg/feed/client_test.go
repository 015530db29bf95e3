package feed_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kankarej/pkg/feed"
	"github.com/shashiranjanraj/kankarej/pkg/feed/feedtest"
)

func storeTree() map[string]any {
	return map[string]any{
		"products": map[string]any{
			"whole_spices": map[string]any{
				"p1": map[string]any{"name": "Turmeric Sticks", "price": 120, "category": "Whole Spices"},
			},
		},
		"contact": map[string]any{
			"gstin":   "24AAACK0000A1Z5",
			"address": "Kankarej, Gujarat",
		},
	}
}

func TestFetchOnce(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)

	snap, err := c.FetchOnce(context.Background(), "products")
	require.NoError(t, err)
	require.True(t, snap.Exists())
	assert.Equal(t, "products", snap.Key)
	assert.Equal(t, "Turmeric Sticks",
		snap.Child("whole_spices").Child("p1").Child("name").String())
}

func TestFetchOnceMissingPath(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)

	snap, err := c.FetchOnce(context.Background(), "nope/nothing")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestFetchOnceTimeout(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	srv.Delay(500 * time.Millisecond)
	c := feed.NewClient(srv.URL, 50*time.Millisecond)

	_, err := c.FetchOnce(context.Background(), "products")
	assert.ErrorIs(t, err, feed.ErrFetchTimeout)
}

func TestFetchOnceBackendError(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	srv.FailWith(http.StatusInternalServerError)
	c := feed.NewClient(srv.URL, time.Second)

	_, err := c.FetchOnce(context.Background(), "products")
	var be *feed.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Equal(t, "products", be.Path)
}

func TestPushAndDelete(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)
	ctx := context.Background()

	key, err := c.Push(ctx, "session_history", map[string]any{"action": "SESSION_START"})
	require.NoError(t, err)
	require.NotEmpty(t, key)
	assert.Equal(t, 1, srv.Pushes())

	snap, err := c.FetchOnce(ctx, "session_history/"+key)
	require.NoError(t, err)
	assert.Equal(t, "SESSION_START", snap.Child("action").String())

	require.NoError(t, c.Delete(ctx, "session_history/"+key))
	snap, err = c.FetchOnce(ctx, "session_history/"+key)
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

// ─── Streaming ────────────────────────────────────────────────────────────────

func recvUpdate(t *testing.T, sub *feed.Subscription) feed.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		require.True(t, ok, "updates channel closed early")
		return snap
	case err := <-sub.Errors():
		t.Fatalf("stream failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no update within deadline")
	}
	return feed.Snapshot{}
}

func TestSubscribeDeliversInitialAndLiveUpdates(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)

	sub := c.Subscribe("products")
	defer sub.Cancel()

	initial := recvUpdate(t, sub)
	assert.Equal(t, "Turmeric Sticks",
		initial.Child("whole_spices").Child("p1").Child("name").String())

	srv.Broadcast("put", "/whole_spices/p2",
		map[string]any{"name": "Cumin Seeds", "price": 90})
	next := recvUpdate(t, sub)
	assert.Equal(t, "Cumin Seeds",
		next.Child("whole_spices").Child("p2").Child("name").String())
	assert.True(t, next.Child("whole_spices").Child("p1").Exists(),
		"a child put must not drop siblings")
}

func TestSubscribePatchMergesChildren(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)

	sub := c.Subscribe("contact")
	defer sub.Cancel()

	initial := recvUpdate(t, sub)
	require.Equal(t, "Kankarej, Gujarat", initial.Child("address").String())

	srv.Broadcast("patch", "/", map[string]any{"fssai": "10719026000305"})
	next := recvUpdate(t, sub)
	assert.Equal(t, "10719026000305", next.Child("fssai").String())
	assert.Equal(t, "Kankarej, Gujarat", next.Child("address").String(),
		"patch must merge, not replace")
}

func TestSubscribeCancelClosesCleanly(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	c := feed.NewClient(srv.URL, time.Second)

	sub := c.Subscribe("products")
	recvUpdate(t, sub)

	sub.Cancel()
	sub.Cancel() // idempotent

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				// cancellation is not a failure
				_, open := <-sub.Errors()
				assert.False(t, open)
				return
			}
		case <-deadline:
			t.Fatal("updates channel did not close after cancel")
		}
	}
}

func TestSubscribeSurfacesBackendFailure(t *testing.T) {
	srv := feedtest.NewServer(storeTree())
	defer srv.Close()
	srv.FailWith(http.StatusUnauthorized)
	c := feed.NewClient(srv.URL, time.Second)

	sub := c.Subscribe("products")
	defer sub.Cancel()

	select {
	case err := <-sub.Errors():
		var be *feed.BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, http.StatusUnauthorized, be.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no stream error within deadline")
	}
}
