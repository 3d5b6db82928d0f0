package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/gophauth/internal/client/kv"
	"github.com/atinyakov/gophauth/internal/models"
)

// failingStore returns err from every call.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error         { return f.err }
func (f failingStore) SetMany(context.Context, map[string]string) error  { return f.err }
func (f failingStore) Delete(context.Context, ...string) error           { return f.err }
func (f failingStore) Close() error                                      { return nil }

func TestHandoff_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	h := NewHandoff(kv.NewMemoryStore())

	_, found, err := h.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, h.Save(ctx, "a@x.com", "tok1"))
	got, found, err := h.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ResetHandoff{Email: "a@x.com", ResetToken: "tok1"}, got)

	require.NoError(t, h.Clear(ctx))
	_, found, err = h.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandoff_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	h := NewHandoff(kv.NewMemoryStore())

	require.NoError(t, h.Save(ctx, "a@x.com", "tok1"))
	require.NoError(t, h.Save(ctx, "b@x.com", "tok2"))

	got, found, err := h.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ResetHandoff{Email: "b@x.com", ResetToken: "tok2"}, got)
}

func TestHandoff_NeverPartial(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		pairs map[string]string
	}{
		{name: "email only", pairs: map[string]string{KeyResetEmail: "a@x.com"}},
		{name: "token only", pairs: map[string]string{KeyResetToken: "tok1"}},
		{name: "empty token", pairs: map[string]string{KeyResetEmail: "a@x.com", KeyResetToken: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kv.NewMemoryStore()
			require.NoError(t, store.SetMany(ctx, tt.pairs))

			got, found, err := NewHandoff(store).Load(ctx)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, models.ResetHandoff{}, got)
		})
	}
}

func TestHandoff_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	h := NewHandoff(failingStore{err: boom})

	assert.ErrorIs(t, h.Save(ctx, "a@x.com", "t"), boom)
	_, found, err := h.Load(ctx)
	assert.ErrorIs(t, err, boom)
	assert.False(t, found)
	assert.ErrorIs(t, h.Clear(ctx), boom)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	s := NewSession(kv.NewMemoryStore())

	_, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Store(ctx, "jwt-1"))
	token, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt-1", token)

	require.NoError(t, s.Clear(ctx))
	_, ok, _ = s.Token(ctx)
	assert.False(t, ok)
}

func TestSession_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	s := NewSession(failingStore{err: boom})

	assert.ErrorIs(t, s.Store(ctx, "x"), boom)
	_, _, err := s.Token(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Clear(ctx), boom)
}
