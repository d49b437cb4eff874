package conversation

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

func TestRegistryGetOrCreateUnknownIsEmpty(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{"s1", "", "with space", "ünïcode"} {
		sess := r.GetOrCreate(id)
		require.NotNil(t, sess)
		assert.Equal(t, id, sess.ID())
		assert.Empty(t, sess.Turns())
	}
	assert.Equal(t, 4, r.Len())
}

func TestRegistryGetOrCreateReturnsSameSession(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate("s1")
	b := r.GetOrCreate("s1")
	assert.Same(t, a, b)
}

func TestRegistryGetOrCreateConcurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	got := make([]*Session, 50)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, r.Len(), "Get must not create sessions")

	created := r.GetOrCreate("s1")
	got, err := r.Get("s1")
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("s1")
	r.GetOrCreate("s2")

	require.NoError(t, r.Delete("s1"))
	assert.Equal(t, []string{"s2"}, r.ListIDs())

	err := r.Delete("s1")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "repeat delete should be NotFound")

	err = r.Delete("unknown")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "unknown", nf.Key)
}

func TestRegistryListIDs(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.ListIDs())

	for i := 3; i > 0; i-- {
		r.GetOrCreate(fmt.Sprintf("s%d", i))
	}
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, r.ListIDs())
}

func TestSessionTurnsIsACopy(t *testing.T) {
	r := NewRegistry()
	sess := r.GetOrCreate("s1")
	sess.appendTurns(r.now(), domain.Turn{Role: domain.RoleSystem, Content: "sys"})

	turns := sess.Turns()
	turns[0].Content = "changed"
	assert.Equal(t, "sys", sess.Turns()[0].Content)

	snap := sess.Snapshot()
	assert.Equal(t, "s1", snap.ConversationID)
	assert.Len(t, snap.Turns, 1)
	assert.False(t, snap.UpdatedAt.Before(snap.CreatedAt))
}
