package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

func userTurn(user, assistant string) []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleUser, Content: user},
		{Role: models.RoleAssistant, Content: assistant},
	}
}

func TestNewSession(t *testing.T) {
	store := NewSessionStore(20)

	a := store.NewSession()
	b := store.NewSession()

	assert.NotEmpty(t, a.SessionID)
	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.Equal(t, 2, store.Count())
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCommitTurn_StampsTurnsAndMergesStats(t *testing.T) {
	store := NewSessionStore(20)

	store.CommitTurn("s1", TurnCommit{
		Messages: userTurn("hola", "buenas"),
		Stats:    models.SessionStats{TotalMessages: 2, TotalTokens: 100, CostUSD: 0.01, ToolsUsed: 1},
	})
	store.CommitTurn("s1", TurnCommit{
		Messages: userTurn("precio del rotomartillo", "850 lempiras por dia"),
		Stats:    models.SessionStats{TotalMessages: 2, TotalTokens: 150, CostUSD: 0.02},
	})

	history := store.History("s1")
	require.Len(t, history, 4)
	assert.Equal(t, 0, history[0].Turn)
	assert.Equal(t, 0, history[1].Turn)
	assert.Equal(t, 1, history[2].Turn)
	assert.Equal(t, 1, history[3].Turn)
	assert.False(t, history[0].Timestamp.IsZero())

	sess, err := store.Stats("s1")
	require.NoError(t, err)
	assert.Equal(t, 4, sess.Stats.TotalMessages)
	assert.Equal(t, 250, sess.Stats.TotalTokens)
	assert.InDelta(t, 0.03, sess.Stats.CostUSD, 1e-9)
	assert.Equal(t, 1, sess.Stats.ToolsUsed)
}

func TestCommitTurn_AppliesCustomerBinding(t *testing.T) {
	store := NewSessionStore(20)

	_, bound := store.Customer("s1")
	assert.False(t, bound)

	store.CommitTurn("s1", TurnCommit{
		Messages: userTurn("me llamo Juan", "mucho gusto Juan"),
		Customer: &CustomerBinding{ID: 7, Name: "Juan"},
	})

	binding, bound := store.Customer("s1")
	require.True(t, bound)
	assert.Equal(t, uint(7), binding.ID)
	assert.Equal(t, "Juan", binding.Name)
}

func TestCommitTurn_TruncatesOldestTurns(t *testing.T) {
	store := NewSessionStore(2)

	store.CommitTurn("s1", TurnCommit{Messages: userTurn("uno", "1")})
	store.CommitTurn("s1", TurnCommit{Messages: userTurn("dos", "2")})
	store.CommitTurn("s1", TurnCommit{Messages: userTurn("tres", "3")})

	history := store.History("s1")
	require.Len(t, history, 4)
	assert.Equal(t, "dos", history[0].Content)
	assert.Equal(t, "tres", history[2].Content)
	for _, m := range history {
		assert.GreaterOrEqual(t, m.Turn, 1)
	}
}

func TestAcquireTurn_SerializesWithinSession(t *testing.T) {
	store := NewSessionStore(20)

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := store.AcquireTurn(context.Background(), "s1")
			if err != nil {
				t.Error(err)
				return
			}
			defer release()
			if cur := active.Add(1); cur > maxActive.Load() {
				maxActive.Store(cur)
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestAcquireTurn_TimesOutBehindSlowTurn(t *testing.T) {
	store := NewSessionStore(20)

	release, err := store.AcquireTurn(context.Background(), "s1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = store.AcquireTurn(ctx, "s1")
	assert.True(t, utils.IsCode(err, utils.CodeTimeout))
}

func TestAcquireTurn_IndependentSessions(t *testing.T) {
	store := NewSessionStore(20)

	releaseA, err := store.AcquireTurn(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := store.AcquireTurn(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestReset_KeepsCustomerBinding(t *testing.T) {
	store := NewSessionStore(20)

	store.CommitTurn("s1", TurnCommit{
		Messages: userTurn("me llamo Ana", "hola Ana"),
		Stats:    models.SessionStats{TotalMessages: 2, TotalTokens: 80},
		Customer: &CustomerBinding{ID: 3, Name: "Ana"},
	})

	require.NoError(t, store.Reset("s1"))

	assert.Empty(t, store.History("s1"))
	sess, err := store.Stats("s1")
	require.NoError(t, err)
	assert.Zero(t, sess.Stats.TotalTokens)

	binding, bound := store.Customer("s1")
	require.True(t, bound)
	assert.Equal(t, "Ana", binding.Name)

	// Turn numbering restarts with the cleared history.
	store.CommitTurn("s1", TurnCommit{Messages: userTurn("sigo aqui", "claro Ana")})
	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, 0, history[0].Turn)
}

func TestDelete_RemovesSession(t *testing.T) {
	store := NewSessionStore(20)

	id := store.NewSession().SessionID
	require.NoError(t, store.Delete(id))
	assert.Zero(t, store.Count())

	_, err := store.Stats(id)
	assert.True(t, utils.IsCode(err, utils.CodeSessionNotFound))
}

func TestUnknownSessionErrors(t *testing.T) {
	store := NewSessionStore(20)

	_, err := store.Stats("nope")
	assert.True(t, utils.IsCode(err, utils.CodeSessionNotFound))
	assert.True(t, utils.IsCode(store.Reset("nope"), utils.CodeSessionNotFound))
	assert.True(t, utils.IsCode(store.Delete("nope"), utils.CodeSessionNotFound))
}

func TestHistory_ReturnsCopy(t *testing.T) {
	store := NewSessionStore(20)

	store.CommitTurn("s1", TurnCommit{Messages: userTurn("hola", "buenas")})
	history := store.History("s1")
	history[0].Content = "mutado"

	fresh := store.History("s1")
	assert.Equal(t, "hola", fresh[0].Content)
}
