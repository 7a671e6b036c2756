package matchmaking

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/versebattle/engine/internal/infra/pgtestutil"
	"github.com/versebattle/engine/internal/repos/battles"
	"github.com/versebattle/engine/internal/repos/queue"
	"github.com/versebattle/engine/internal/repos/wallets"
	"github.com/versebattle/engine/internal/services/ledger"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	_, err := client.Ping(t.Context()).Result()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	return New(db, client, ledger.New(db)), db
}

func seedCoins(t *testing.T, db *sql.DB, userID uuid.UUID, coins int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO balances (user_id, coins, gems, lifetime_coins_earned, lifetime_gems_earned)
		VALUES ($1, $2, 0, $2, 0)
	`, userID, coins)
	if err != nil {
		t.Fatalf("seed coins: %v", err)
	}
}

// betCoins returns a bet tier unique to the test, isolating its queue
// partition from other tests sharing the Redis server.
func betCoins(t *testing.T) int64 {
	t.Helper()

	h := int64(0)
	for _, c := range t.Name() {
		h = h*31 + int64(c)
	}
	if h < 0 {
		h = -h
	}

	return 10 + h%1_000_000
}

func TestJoinQueue_PairsTwoPlayers(t *testing.T) {
	svc, db := newTestService(t)
	bet := betCoins(t)

	alice, bob := uuid.New(), uuid.New()
	seedCoins(t, db, alice, bet)
	seedCoins(t, db, bob, bet)

	first, err := svc.JoinQueue(t.Context(), alice, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if !first.Waiting {
		t.Fatal("first joiner must wait")
	}

	second, err := svc.JoinQueue(t.Context(), bob, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if second.Waiting || second.BattleID == nil {
		t.Fatalf("second joiner must be matched: %+v", second)
	}

	// Both wagers escrowed at match time.
	svcLedger := ledger.New(db)
	for _, p := range []uuid.UUID{alice, bob} {
		bal, err := svcLedger.GetBalance(t.Context(), p)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if bal.Coins != 0 {
			t.Fatalf("wager must be escrowed: user %s has %d", p, bal.Coins)
		}
	}

	var status battles.Status
	err = db.QueryRow(`SELECT status FROM battles WHERE id = $1`, *second.BattleID).Scan(&status)
	if err != nil {
		t.Fatalf("battle row: %v", err)
	}
	if status != battles.StatusMatched {
		t.Fatalf("battle status: %s", status)
	}

	// The waiting entry must be consumed.
	removed, err := svc.LeaveQueue(t.Context(), alice, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if removed {
		t.Fatal("matched player must no longer be queued")
	}
}

func TestJoinQueue_InsufficientFunds(t *testing.T) {
	svc, db := newTestService(t)
	bet := betCoins(t)

	broke := uuid.New()
	seedCoins(t, db, broke, bet-1)

	_, err := svc.JoinQueue(t.Context(), broke, battles.TypeCasual, bet, 0)
	if !errors.Is(err, wallets.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	removed, err := svc.LeaveQueue(t.Context(), broke, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if removed {
		t.Fatal("a rejected joiner must not be queued")
	}
}

func TestJoinQueue_NeverMatchesSelf(t *testing.T) {
	svc, db := newTestService(t)
	bet := betCoins(t)

	userID := uuid.New()
	seedCoins(t, db, userID, 2*bet)

	first, err := svc.JoinQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !first.Waiting {
		t.Fatal("expected to wait in an empty partition")
	}

	// A second join must not pop the user's own entry into a self-battle.
	_, err = svc.JoinQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if !errors.Is(err, queue.ErrAlreadyInQueue) {
		t.Fatalf("expected ErrAlreadyInQueue, got %v", err)
	}

	var selfBattles int
	err = db.QueryRow(`
		SELECT count(*) FROM battles WHERE player1_id = $1 AND player2_id = $1
	`, userID).Scan(&selfBattles)
	if err != nil {
		t.Fatalf("battle count: %v", err)
	}
	if selfBattles != 0 {
		t.Fatalf("self battles created: %d", selfBattles)
	}

	removed, err := svc.LeaveQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !removed {
		t.Fatal("the original entry must still be queued")
	}
}

func TestJoinQueue_RejectsFriendlyType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.JoinQueue(t.Context(), uuid.New(), battles.TypeFriendly, 10, 0)
	if !errors.Is(err, ErrInvalidBattleType) {
		t.Fatalf("expected ErrInvalidBattleType, got %v", err)
	}
}

func TestLeaveQueue_Idempotent(t *testing.T) {
	svc, db := newTestService(t)
	bet := betCoins(t)

	userID := uuid.New()
	seedCoins(t, db, userID, bet)

	result, err := svc.JoinQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !result.Waiting {
		t.Fatal("expected to wait in an empty partition")
	}

	removed, err := svc.LeaveQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !removed {
		t.Fatal("expected removal of the queued entry")
	}

	removed, err = svc.LeaveQueue(t.Context(), userID, battles.TypeCasual, bet, 0)
	if err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if removed {
		t.Fatal("second leave must be a no-op")
	}
}
