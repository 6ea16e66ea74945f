package service

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatchmaking(t *testing.T) (MatchmakingService, SessionService) {
	t.Helper()

	session, _, _ := newTestSession(t)
	logger := testLogger()

	return NewMatchmakingService(logger, session), session
}

func receiveMatchID(t *testing.T, ticket *Ticket) string {
	t.Helper()

	select {
	case matchID := <-ticket.Found:
		return matchID
	case <-time.After(time.Second):
		t.Fatalf("ticket %s never received a match", ticket.ID)
		return ""
	}
}

func TestMatchmakingService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Complementary roles pair immediately", func(t *testing.T) {
		matchmaking, session := newTestMatchmaking(t)

		tigerTicket, err := matchmaking.Enqueue(ctx, "alice", entity.RoleTiger)
		require.NoError(t, err)

		goatTicket, err := matchmaking.Enqueue(ctx, "bob", entity.RoleGoat)
		require.NoError(t, err)

		matchID := receiveMatchID(t, tigerTicket)
		assert.Equal(t, matchID, receiveMatchID(t, goatTicket), "both tickets must point at the same match")

		match, err := session.GetMatch(ctx, matchID)
		require.NoError(t, err)
		assert.Equal(t, "alice", match.TigerPlayerID)
		assert.Equal(t, "bob", match.GoatPlayerID)
	})

	t.Run("Same role waiters do not pair", func(t *testing.T) {
		matchmaking, _ := newTestMatchmaking(t)

		first, err := matchmaking.Enqueue(ctx, "alice", entity.RoleTiger)
		require.NoError(t, err)

		_, err = matchmaking.Enqueue(ctx, "bob", entity.RoleTiger)
		require.NoError(t, err)

		select {
		case <-first.Found:
			t.Fatal("two tiger waiters must not be paired")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Earliest compatible waiter is paired first", func(t *testing.T) {
		matchmaking, session := newTestMatchmaking(t)

		// alice wants tigers, bob wants tigers too, carol takes any side.
		aliceTicket, err := matchmaking.Enqueue(ctx, "alice", entity.RoleTiger)
		require.NoError(t, err)
		bobTicket, err := matchmaking.Enqueue(ctx, "bob", entity.RoleTiger)
		require.NoError(t, err)

		carolTicket, err := matchmaking.Enqueue(ctx, "carol", RoleAny)
		require.NoError(t, err)

		// carol completes alice's pair, not bob's: alice enqueued first.
		matchID := receiveMatchID(t, aliceTicket)
		assert.Equal(t, matchID, receiveMatchID(t, carolTicket))

		match, err := session.GetMatch(ctx, matchID)
		require.NoError(t, err)
		assert.Equal(t, "alice", match.TigerPlayerID)
		assert.Equal(t, "carol", match.GoatPlayerID)

		select {
		case <-bobTicket.Found:
			t.Fatal("bob must still be waiting")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Two role-agnostic waiters pair, earlier one gets the tigers", func(t *testing.T) {
		matchmaking, session := newTestMatchmaking(t)

		first, err := matchmaking.Enqueue(ctx, "alice", RoleAny)
		require.NoError(t, err)
		second, err := matchmaking.Enqueue(ctx, "bob", RoleAny)
		require.NoError(t, err)

		matchID := receiveMatchID(t, first)
		require.Equal(t, matchID, receiveMatchID(t, second))

		match, err := session.GetMatch(ctx, matchID)
		require.NoError(t, err)
		assert.Equal(t, "alice", match.TigerPlayerID)
		assert.Equal(t, "bob", match.GoatPlayerID)
	})

	t.Run("A player never pairs with themselves", func(t *testing.T) {
		matchmaking, _ := newTestMatchmaking(t)

		first, err := matchmaking.Enqueue(ctx, "alice", RoleAny)
		require.NoError(t, err)

		_, err = matchmaking.Enqueue(ctx, "alice", RoleAny)
		require.NoError(t, err)

		select {
		case <-first.Found:
			t.Fatal("a player must not be matched against themselves")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Validation", func(t *testing.T) {
		matchmaking, _ := newTestMatchmaking(t)

		_, err := matchmaking.Enqueue(ctx, "", entity.RoleTiger)
		require.ErrorIs(t, err, apperror.ErrValidation)

		_, err = matchmaking.Enqueue(ctx, "alice", "LION")
		require.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestMatchmakingService_Cancel(t *testing.T) {
	ctx := context.Background()

	matchmaking, _ := newTestMatchmaking(t)

	aliceTicket, err := matchmaking.Enqueue(ctx, "alice", entity.RoleTiger)
	require.NoError(t, err)

	matchmaking.Cancel(aliceTicket)

	// bob would have completed alice's pair, now he just waits.
	bobTicket, err := matchmaking.Enqueue(ctx, "bob", entity.RoleGoat)
	require.NoError(t, err)

	select {
	case <-aliceTicket.Found:
		t.Fatal("canceled ticket must never fire")
	case <-bobTicket.Found:
		t.Fatal("bob has no compatible waiter left")
	case <-time.After(50 * time.Millisecond):
	}

	// Canceling twice or canceling nil is harmless.
	matchmaking.Cancel(aliceTicket)
	matchmaking.Cancel(nil)
}
