package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/concierge/internal/cache/domain"
	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/txcontext"
)

// memoryRepository is an in-memory EntryRepository.
type memoryRepository struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{entries: make(map[string]domain.Entry)}
}

func (r *memoryRepository) Get(ctx context.Context, namespace, key string) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[namespace+"/"+key]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return &entry, nil
}

func (r *memoryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Namespace+"/"+entry.Key] = *entry
	return nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Get(ctx context.Context, namespace, key string) (*domain.Entry, error) {
	args := m.Called(ctx, namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch_HitBypassesComputation(t *testing.T) {
	ctx := context.Background()
	c := NewCache("tests", newMemoryRepository(), discardLogger())

	first := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		return outcome.Ok("v")
	})
	require.True(t, first.Success())

	ran := false
	second := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		ran = true
		return outcome.Fail[string]("x", "y")
	})

	assert.False(t, ran)
	require.True(t, second.Success())
	assert.Equal(t, "v", second.Value())
}

func TestFetch_FailureIsNeverCached(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	c := NewCache("tests", repo, discardLogger())

	failed := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		return outcome.Fail[string](outcome.CodeConnectionTimeout, "timeout")
	})
	assert.Equal(t, outcome.CodeConnectionTimeout, failed.Code())
	assert.Empty(t, repo.entries)

	second := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		return outcome.Ok("v")
	})
	require.True(t, second.Success())
	assert.Equal(t, "v", second.Value())
}

func TestFetch_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	a := NewCache("a", repo, discardLogger())
	b := NewCache("b", repo, discardLogger())

	Fetch(ctx, a, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] { return outcome.Ok("from-a") })
	result := Fetch(ctx, b, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] { return outcome.Ok("from-b") })

	assert.Equal(t, "from-b", result.Value())
	assert.Equal(t, "b", b.Namespace())
}

func TestFetch_StructuredCodecKeysDecodeAsStrings(t *testing.T) {
	ctx := context.Background()
	c := NewCache("tests", newMemoryRepository(), discardLogger())

	compute := func(ctx context.Context) outcome.Result[any] {
		return outcome.Ok[any](map[int]string{1: "one"})
	}
	Fetch(ctx, c, "k", StructuredCodec{}, compute)
	cached := Fetch(ctx, c, "k", StructuredCodec{}, compute)

	require.True(t, cached.Success())
	assert.Equal(t, map[string]any{"1": "one"}, cached.Value())
}

func TestFetch_RecordsHitAndMissInTransactionContext(t *testing.T) {
	tc := txcontext.New("api")
	ctx := txcontext.WithContext(context.Background(), tc)
	c := NewCache("tests", newMemoryRepository(), discardLogger())

	compute := func(ctx context.Context) outcome.Result[string] { return outcome.Ok("v") }
	Fetch(ctx, c, "k", TextCodec{}, compute)
	Fetch(ctx, c, "k", TextCodec{}, compute)

	events := tc.Events()
	require.Len(t, events, 2)
	assert.Equal(t, txcontext.LabelCacheMiss, events[0].Label)
	assert.Equal(t, txcontext.LabelCacheHit, events[1].Label)
}

func TestFetch_StorageFailuresDegrade(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadErrorRecomputes", func(t *testing.T) {
		repo := &MockEntryRepository{}
		repo.On("Get", ctx, "tests", "k").Return(nil, errors.New("db down"))
		repo.On("Upsert", ctx, mock.MatchedBy(func(e *domain.Entry) bool {
			return e.Value == "v" && !e.UpdatedAt.IsZero()
		})).Return(nil)

		c := NewCache("tests", repo, discardLogger())
		result := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
			return outcome.Ok("v")
		})

		assert.Equal(t, "v", result.Value())
		repo.AssertExpectations(t)
	})

	t.Run("WriteErrorStillReturnsValue", func(t *testing.T) {
		repo := &MockEntryRepository{}
		repo.On("Get", ctx, "tests", "k").Return(nil, domain.ErrEntryNotFound)
		repo.On("Upsert", ctx, mock.Anything).Return(errors.New("db down"))

		c := NewCache("tests", repo, discardLogger())
		result := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
			return outcome.Ok("v")
		})

		assert.Equal(t, "v", result.Value())
		repo.AssertExpectations(t)
	})

	t.Run("UndecodableEntryRecomputes", func(t *testing.T) {
		repo := &MockEntryRepository{}
		repo.On("Get", ctx, "tests", "k").Return(&domain.Entry{Value: "{not json"}, nil)
		repo.On("Upsert", ctx, mock.Anything).Return(nil)

		c := NewCache("tests", repo, discardLogger())
		result := Fetch(ctx, c, "k", JSONCodec[map[string]string]{}, func(ctx context.Context) outcome.Result[map[string]string] {
			return outcome.Ok(map[string]string{"a": "b"})
		})

		assert.Equal(t, map[string]string{"a": "b"}, result.Value())
	})
}

func TestFetch_ConcurrentMissesMayRecompute(t *testing.T) {
	ctx := context.Background()
	c := NewCache("tests", newMemoryRepository(), discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := Fetch(ctx, c, "token", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
				return outcome.Ok("same-token")
			})
			assert.Equal(t, "same-token", result.Value())
		}()
	}
	wg.Wait()
}

func TestCodecs(t *testing.T) {
	t.Run("TextCodec", func(t *testing.T) {
		encoded, err := TextCodec{}.Encode("plain")
		require.NoError(t, err)
		decoded, err := TextCodec{}.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, "plain", decoded)
	})

	t.Run("StructuredCodec_RejectsUnencodableKeys", func(t *testing.T) {
		_, err := StructuredCodec{}.Encode(map[[2]int]string{{1, 2}: "x"})
		assert.Error(t, err)
	})

	t.Run("JSONCodec_Struct", func(t *testing.T) {
		type token struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		codec := JSONCodec[token]{}
		encoded, err := codec.Encode(token{AccessToken: "abc", ExpiresIn: 3600})
		require.NoError(t, err)
		decoded, err := codec.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, token{AccessToken: "abc", ExpiresIn: 3600}, decoded)

		_, err = codec.Decode("nope")
		assert.Error(t, err)
		assert.Contains(t, fmt.Sprint(err), "json codec")
	})
}

func TestStore_OverwritesCachedValue(t *testing.T) {
	ctx := context.Background()
	c := NewCache("tests", newMemoryRepository(), discardLogger())

	Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		return outcome.Ok("stale")
	})
	require.NoError(t, Store(ctx, c, "k", TextCodec{}, "fresh"))

	got := Fetch(ctx, c, "k", TextCodec{}, func(ctx context.Context) outcome.Result[string] {
		t.Fatal("compute must not run on a hit")
		return outcome.Ok("")
	})
	assert.Equal(t, "fresh", got.Value())
}
