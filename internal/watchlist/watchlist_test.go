package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the watchlist endpoints from a slice.
type fakeAPI struct {
	mu        sync.Mutex
	items     []model.WatchlistItem
	listCalls int
	malformed bool
	failWrite bool
}

func (f *fakeAPI) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case request.Method == http.MethodGet && request.URL.Path == "/api/watchlist":
		f.listCalls++

		if f.malformed {
			fmt.Fprint(writer, `{"items": []}`)

			return
		}

		_ = json.NewEncoder(writer).Encode(f.items)
	case request.Method == http.MethodPost && request.URL.Path == "/api/watchlist":
		if f.failWrite {
			writer.WriteHeader(http.StatusInternalServerError)

			return
		}

		var body AddRequest

		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			writer.WriteHeader(http.StatusBadRequest)

			return
		}

		f.items = append(f.items, body.Item)
		writer.WriteHeader(http.StatusCreated)
	case request.Method == http.MethodDelete && strings.HasPrefix(request.URL.Path, "/api/watchlist/"):
		id := strings.TrimPrefix(request.URL.Path, "/api/watchlist/")

		for i, item := range f.items {
			if item.ID == id {
				f.items = append(f.items[:i], f.items[i+1:]...)
				writer.WriteHeader(http.StatusNoContent)

				return
			}
		}

		writer.WriteHeader(http.StatusNotFound)
	default:
		writer.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	return NewClient(NewHTTPRemote(remote.NewClient(server.URL, time.Second)), DefaultWindow)
}

var btc = model.WatchlistItem{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}
var eth = model.WatchlistItem{ID: "ethereum", Symbol: "eth", Name: "Ethereum"}

func TestClient_List(t *testing.T) {
	api := &fakeAPI{items: []model.WatchlistItem{btc, eth}}
	client := newTestClient(t, api)

	items, err := client.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.WatchlistItem{btc, eth}, items)
}

func TestClient_ListIsCached(t *testing.T) {
	api := &fakeAPI{items: []model.WatchlistItem{btc}}
	client := newTestClient(t, api)

	_, _ = client.List(context.Background())
	_, _ = client.List(context.Background())

	assert.Equal(t, 1, api.lists())
}

func TestClient_AddInvalidatesList(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	items, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, client.Add(context.Background(), btc))

	items, err = client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.WatchlistItem{btc}, items)
	assert.Equal(t, 2, api.lists())
}

func TestClient_RemoveInvalidatesList(t *testing.T) {
	api := &fakeAPI{items: []model.WatchlistItem{btc, eth}}
	client := newTestClient(t, api)

	_, _ = client.List(context.Background())
	require.NoError(t, client.Remove(context.Background(), "bitcoin"))

	items, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.WatchlistItem{eth}, items)
}

func TestClient_RemoveTwiceIsNoop(t *testing.T) {
	api := &fakeAPI{items: []model.WatchlistItem{btc, eth}}
	client := newTestClient(t, api)

	require.NoError(t, client.Remove(context.Background(), "bitcoin"))
	require.NoError(t, client.Remove(context.Background(), "bitcoin"), "removing an absent id must not fail")
	require.NoError(t, client.Remove(context.Background(), "dogecoin"))

	items, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.WatchlistItem{eth}, items)
}

func TestClient_MalformedListIsEmpty(t *testing.T) {
	api := &fakeAPI{malformed: true}
	client := newTestClient(t, api)

	items, err := client.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_AddFailurePropagates(t *testing.T) {
	api := &fakeAPI{items: []model.WatchlistItem{eth}, failWrite: true}
	client := newTestClient(t, api)

	_, _ = client.List(context.Background())
	err := client.Add(context.Background(), btc)

	var transportErr *remote.TransportError

	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.Status)

	// The cache is left alone when the write fails.
	_, _ = client.List(context.Background())
	assert.Equal(t, 1, api.lists())
}

type failingRemote struct{}

func (failingRemote) List(ctx context.Context) ([]model.WatchlistItem, error) {
	return nil, &remote.TransportError{Op: "GET", URL: "/api/watchlist", Err: errors.New("connection refused")}
}

func (failingRemote) Add(ctx context.Context, item model.WatchlistItem) error { return nil }

func (failingRemote) Remove(ctx context.Context, id string) error { return nil }

func TestClient_ListTransportErrorPropagates(t *testing.T) {
	client := NewClient(failingRemote{}, DefaultWindow)

	items, err := client.List(context.Background())

	assert.Error(t, err)
	assert.Nil(t, items)
}

// recordingRemote counts writes and lets a test control each List call.
type recordingRemote struct {
	mu     sync.Mutex
	writes int
	list   func(call int) []model.WatchlistItem
	calls  int
}

func (r *recordingRemote) List(ctx context.Context) ([]model.WatchlistItem, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()

	return r.list(call), nil
}

func (r *recordingRemote) Add(ctx context.Context, item model.WatchlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++

	return nil
}

func (r *recordingRemote) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++

	return nil
}

func TestValidateID(t *testing.T) {
	testCases := []struct {
		id    string
		valid bool
	}{
		{"bitcoin", true},
		{"usd-coin", true},
		{"", false},
		{"   ", false},
		{"a/b", false},
		{"../bitcoin", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.id, func(t *testing.T) {
			err := ValidateID(testCase.id)

			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidID)
			}
		})
	}
}

func TestClient_InvalidIDsNeverReachTheRemote(t *testing.T) {
	store := &recordingRemote{}
	client := NewClient(store, DefaultWindow)

	assert.ErrorIs(t, client.Add(context.Background(), model.WatchlistItem{ID: "a/b"}), ErrInvalidID)
	assert.ErrorIs(t, client.Remove(context.Background(), "a/b"), ErrInvalidID, "a slash id must not count as removed")
	assert.ErrorIs(t, client.Remove(context.Background(), ""), ErrInvalidID)
	assert.Equal(t, 0, store.writes)
}

func TestClient_SuppressedListOverExpiredEntry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	firstStarted := make(chan struct{})
	secondStarted := make(chan struct{})
	releaseSecond := make(chan struct{})

	store := &recordingRemote{list: func(call int) []model.WatchlistItem {
		switch call {
		case 1:
			return []model.WatchlistItem{{ID: "old"}}
		case 2:
			close(firstStarted)
			<-secondStarted

			return []model.WatchlistItem{{ID: "fresh-a"}}
		default:
			close(secondStarted)
			<-releaseSecond

			return []model.WatchlistItem{{ID: "fresh-b"}}
		}
	}}
	client := NewClient(store, DefaultWindow)
	client.SetClock(func() time.Time { return now })

	_, err := client.List(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * DefaultWindow)

	first := make(chan []model.WatchlistItem)
	second := make(chan []model.WatchlistItem)

	go func() {
		items, _ := client.List(context.Background())
		first <- items
	}()

	<-firstStarted

	go func() {
		items, _ := client.List(context.Background())
		second <- items
	}()

	assert.Equal(t, "fresh-a", (<-first)[0].ID, "an expired entry must not replace the caller's own result")

	close(releaseSecond)
	assert.Equal(t, "fresh-b", (<-second)[0].ID)
}
