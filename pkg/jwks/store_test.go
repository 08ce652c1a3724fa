package jwks

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/local-idp/pkg/errors"
)

func TestKeySetStore(t *testing.T) {
	generate := reusingGenerator(t)

	t.Run("NewKeySetStore", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)
		assert.Len(t, store.Snapshot().Keys, KeySetSize)
	})

	t.Run("NewKeySetStore_GenerationFailure", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(failingGenerator()))
		require.Error(t, err)
		assert.Nil(t, store)
		assert.True(t, errors.IsCode(err, errors.ErrCodeKeyGeneration))
	})

	t.Run("SnapshotIsIsolated", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)

		snapshot := store.Snapshot()
		kids := snapshot.Kids()
		snapshot.Keys[0] = JWK{Kid: "tampered"}

		assert.Equal(t, kids, store.Snapshot().Kids())
		_, err = store.Rotate()
		require.NoError(t, err)
		assert.Equal(t, "tampered", snapshot.Keys[0].Kid, "old snapshot is not rewritten by rotation")
	})

	t.Run("FindAndRandomSigningKey", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)

		key, err := store.RandomSigningKey()
		require.NoError(t, err)
		found, ok := store.Find(key.Kid)
		require.True(t, ok)
		assert.Equal(t, key.Kid, found.Kid)

		alg, err := store.SigningAlgorithm()
		require.NoError(t, err)
		assert.Equal(t, AlgorithmRS256, alg)
	})

	t.Run("Rotate", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)
		before := store.Snapshot().Kids()

		installed, err := store.Rotate()
		require.NoError(t, err)
		assert.Equal(t, installed.Kids(), store.Snapshot().Kids())
		assert.Equal(t, before[:2], installed.Kids()[1:])

		_, ok := store.Find(before[2])
		assert.False(t, ok)
	})

	t.Run("Revoke", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)
		before := store.Snapshot().Kids()

		_, err = store.Revoke()
		require.NoError(t, err)
		for _, kid := range before {
			_, ok := store.Find(kid)
			assert.False(t, ok)
		}
		assert.Len(t, store.Snapshot().Keys, KeySetSize)
	})

	t.Run("Rotate_RetriesThenSucceeds", func(t *testing.T) {
		var calls atomic.Int32
		flaky := func() (JWK, error) {
			n := calls.Add(1)
			// first KeySetSize calls seed the store, the next one fails once
			if n == KeySetSize+1 {
				return failingGenerator()()
			}
			return generate()
		}

		store, err := NewKeySetStore(WithKeyGenerator(flaky), WithGenerationAttempts(2))
		require.NoError(t, err)

		_, err = store.Rotate()
		require.NoError(t, err)
		assert.Equal(t, int32(KeySetSize+2), calls.Load())
	})

	t.Run("Rotate_GivesUpAfterAttempts", func(t *testing.T) {
		var fail atomic.Bool
		var calls atomic.Int32
		generator := func() (JWK, error) {
			calls.Add(1)
			if fail.Load() {
				return failingGenerator()()
			}
			return generate()
		}

		store, err := NewKeySetStore(WithKeyGenerator(generator), WithGenerationAttempts(3))
		require.NoError(t, err)
		before := store.Snapshot().Kids()

		fail.Store(true)
		calls.Store(0)
		_, err = store.Rotate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeKeyGeneration))
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, before, store.Snapshot().Kids(), "failed rotation leaves the set untouched")

		_, err = store.Revoke()
		require.Error(t, err)
		assert.Equal(t, before, store.Snapshot().Kids(), "failed revocation leaves the set untouched")
	})

	t.Run("ConcurrentRotationsAreNotLost", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)
		initial := store.Snapshot().Kids()

		var wg sync.WaitGroup
		newKids := make(chan string, KeySetSize)
		for range KeySetSize {
			wg.Add(1)
			go func() {
				defer wg.Done()
				installed, err := store.Rotate()
				if assert.NoError(t, err) {
					newKids <- installed.Keys[0].Kid
				}
			}()
		}
		wg.Wait()
		close(newKids)

		final := store.Snapshot()
		assert.Len(t, final.Keys, KeySetSize)
		for kid := range newKids {
			_, ok := final.Find(kid)
			assert.True(t, ok, "rotation that installed %s was lost", kid)
		}
		for _, kid := range initial {
			_, ok := final.Find(kid)
			assert.False(t, ok, "three rotations must push out every initial key")
		}
	})

	t.Run("ConcurrentRotateAndRevoke", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)
		initial := store.Snapshot().Kids()

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			rotated = map[string]bool{}
			revoked [][]string
		)
		for i := range 12 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%3 == 0 {
					set, err := store.Revoke()
					if assert.NoError(t, err) {
						mu.Lock()
						revoked = append(revoked, set.Kids())
						mu.Unlock()
					}
					return
				}
				installed, err := store.Rotate()
				if assert.NoError(t, err) {
					mu.Lock()
					rotated[installed.Keys[0].Kid] = true
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		final := store.Snapshot().Kids()
		require.Len(t, final, KeySetSize)
		for _, kid := range initial {
			assert.NotContains(t, final, kid, "a revocation must remove every initial key")
		}

		// The final set is the keys rotated in after the last revocation,
		// newest first, followed by the head of that revocation's set.
		pushed := 0
		for pushed < len(final) && rotated[final[pushed]] {
			pushed++
		}
		tail := final[pushed:]
		if len(tail) == 0 {
			return
		}
		var source []string
		for _, set := range revoked {
			if set[0] == tail[0] {
				source = set
			}
		}
		require.NotNil(t, source, "kid %s came from neither a rotation nor a revocation", tail[0])
		assert.Equal(t, source[:len(tail)], tail)
	})

	t.Run("ConcurrentReadersDuringRotation", func(t *testing.T) {
		store, err := NewKeySetStore(WithKeyGenerator(generate))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for range 50 {
					if i%4 == 0 {
						_, _ = store.Rotate()
						continue
					}
					assert.Len(t, store.Snapshot().Keys, KeySetSize)
					_, err := store.RandomSigningKey()
					assert.NoError(t, err)
				}
			}(i)
		}
		wg.Wait()
	})
}
