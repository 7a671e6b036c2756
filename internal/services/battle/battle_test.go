package battle

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgtestutil"
	"github.com/versebattle/engine/internal/repos/battles"
	"github.com/versebattle/engine/internal/services/ledger"
)

func seedBattle(t *testing.T, db *sql.DB, p1, p2 uuid.UUID, status battles.Status, betCoins int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(`
		INSERT INTO battles (id, player1_id, player2_id, battle_type, status, bet_coins, bet_gems)
		VALUES ($1, $2, $3, 'ranked', $4, $5, 0)
	`, id, p1, p2, status, betCoins)
	if err != nil {
		t.Fatalf("seed battle: %v", err)
	}

	return id
}

func seedRound(t *testing.T, db *sql.DB, battleID uuid.UUID, roundNumber, p1Votes, p2Votes int) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO battle_rounds (battle_id, round_number, player1_votes, player2_votes)
		VALUES ($1, $2, $3, $4)
	`, battleID, roundNumber, p1Votes, p2Votes)
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}
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

func seedFriendship(t *testing.T, db *sql.DB, a, b uuid.UUID, status string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, $3)
	`, a, b, status)
	if err != nil {
		t.Fatalf("seed friendship: %v", err)
	}
}

func TestFinalize_WinnerTakesDoubleWager(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	p1, p2 := uuid.New(), uuid.New()
	// Wagers were already escrowed at match time.
	seedCoins(t, db, p1, 0)
	seedCoins(t, db, p2, 0)

	battleID := seedBattle(t, db, p1, p2, battles.StatusInProgress, 50)
	seedRound(t, db, battleID, 1, 3, 1)
	seedRound(t, db, battleID, 2, 2, 4)
	seedRound(t, db, battleID, 3, 5, 2)

	svc := New(db, ledger.New(db))

	settled, err := svc.Finalize(t.Context(), battleID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if settled.Status != battles.StatusCompleted {
		t.Fatalf("status after finalize: %s", settled.Status)
	}
	if settled.WinnerID == nil || *settled.WinnerID != p1 {
		t.Fatalf("player1 won 2 of 3 rounds, winner=%v", settled.WinnerID)
	}
	if settled.Player1Score != 2 || settled.Player2Score != 1 {
		t.Fatalf("scores: got %d/%d", settled.Player1Score, settled.Player2Score)
	}

	svcLedger := ledger.New(db)

	winBal, err := svcLedger.GetBalance(t.Context(), p1)
	if err != nil {
		t.Fatalf("winner balance: %v", err)
	}
	if winBal.Coins != 100 {
		t.Fatalf("winner must receive 2x the wager: want 100, got %d", winBal.Coins)
	}

	loseBal, err := svcLedger.GetBalance(t.Context(), p2)
	if err != nil {
		t.Fatalf("loser balance: %v", err)
	}
	if loseBal.Coins != 0 {
		t.Fatalf("loser gets nothing back: got %d", loseBal.Coins)
	}
}

func TestFinalize_TieRefundsBoth(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	p1, p2 := uuid.New(), uuid.New()
	seedCoins(t, db, p1, 0)
	seedCoins(t, db, p2, 0)

	battleID := seedBattle(t, db, p1, p2, battles.StatusInProgress, 50)
	seedRound(t, db, battleID, 1, 3, 1)
	seedRound(t, db, battleID, 2, 1, 3)

	svc := New(db, ledger.New(db))

	settled, err := svc.Finalize(t.Context(), battleID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if settled.WinnerID != nil {
		t.Fatalf("tie must have no winner, got %v", settled.WinnerID)
	}

	svcLedger := ledger.New(db)
	for _, p := range []uuid.UUID{p1, p2} {
		bal, err := svcLedger.GetBalance(t.Context(), p)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if bal.Coins != 50 {
			t.Fatalf("tie must refund the original wager: want 50, got %d", bal.Coins)
		}
	}
}

func TestFinalize_SettlesAtMostOnce(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	p1, p2 := uuid.New(), uuid.New()
	seedCoins(t, db, p1, 0)
	seedCoins(t, db, p2, 0)

	battleID := seedBattle(t, db, p1, p2, battles.StatusInProgress, 50)
	seedRound(t, db, battleID, 1, 3, 1)

	svc := New(db, ledger.New(db))

	_, err := svc.Finalize(t.Context(), battleID)
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	_, err = svc.Finalize(t.Context(), battleID)
	if !errors.Is(err, battles.ErrInvalidState) {
		t.Fatalf("second finalize must fail with ErrInvalidState, got %v", err)
	}

	bal, err := ledger.New(db).GetBalance(t.Context(), p1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Coins != 100 {
		t.Fatalf("payout must happen once: want 100, got %d", bal.Coins)
	}
}

func TestVoteRound_DuplicateVote(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	p1, p2 := uuid.New(), uuid.New()
	battleID := seedBattle(t, db, p1, p2, battles.StatusInProgress, 0)

	svc := New(db, ledger.New(db))
	voter := uuid.New()

	err := svc.VoteRound(t.Context(), battleID, voter, p1, 1)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}

	// Same voter, same round: rejected even when switching sides.
	err = svc.VoteRound(t.Context(), battleID, voter, p2, 1)
	if !errors.Is(err, battles.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	err = svc.VoteRound(t.Context(), battleID, voter, p2, 2)
	if err != nil {
		t.Fatalf("same voter on another round: %v", err)
	}

	detail, err := svc.Detail(t.Context(), battleID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(detail.Rounds))
	}
	if detail.Rounds[0].Player1Votes != 1 || detail.Rounds[0].Player2Votes != 0 {
		t.Fatalf("round 1 tally: %+v", detail.Rounds[0])
	}
}

func TestVoteRound_TargetMustBeParticipant(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	battleID := seedBattle(t, db, uuid.New(), uuid.New(), battles.StatusInProgress, 0)

	svc := New(db, ledger.New(db))

	err := svc.VoteRound(t.Context(), battleID, uuid.New(), uuid.New(), 1)
	if !errors.Is(err, ErrInvalidVoteTarget) {
		t.Fatalf("expected ErrInvalidVoteTarget, got %v", err)
	}
}

func TestSubmitVerse(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	p1, p2 := uuid.New(), uuid.New()
	battleID := seedBattle(t, db, p1, p2, battles.StatusInProgress, 0)

	svc := New(db, ledger.New(db))

	err := svc.SubmitVerse(t.Context(), battleID, p2, 1, "bars")
	if err != nil {
		t.Fatalf("submit verse: %v", err)
	}

	err = svc.SubmitVerse(t.Context(), battleID, p2, 1, "better bars")
	if err != nil {
		t.Fatalf("resubmit verse: %v", err)
	}

	err = svc.SubmitVerse(t.Context(), battleID, uuid.New(), 1, "heckling")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	detail, err := svc.Detail(t.Context(), battleID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Rounds[0].Player2Verse != "better bars" {
		t.Fatalf("verse upsert must overwrite: %q", detail.Rounds[0].Player2Verse)
	}
	if detail.Rounds[0].Player1Verse != "" {
		t.Fatalf("seat 1 verse must stay empty: %q", detail.Rounds[0].Player1Verse)
	}
}

func TestStart_Idempotent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	battleID := seedBattle(t, db, uuid.New(), uuid.New(), battles.StatusMatched, 0)

	svc := New(db, ledger.New(db))

	started, err := svc.Start(t.Context(), battleID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !started {
		t.Fatal("first start must transition the battle")
	}

	started, err = svc.Start(t.Context(), battleID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if started {
		t.Fatal("second start must be a no-op")
	}

	_, err = svc.Start(t.Context(), uuid.New())
	if !errors.Is(err, battles.ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
}

func TestCreateFriendly_RequiresAcceptedFriendship(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, ledger.New(db))

	a, b := uuid.New(), uuid.New()

	_, err := svc.CreateFriendly(t.Context(), a, b)
	if !errors.Is(err, ErrFriendshipRequired) {
		t.Fatalf("strangers: expected ErrFriendshipRequired, got %v", err)
	}

	seedFriendship(t, db, a, b, "pending")

	_, err = svc.CreateFriendly(t.Context(), a, b)
	if !errors.Is(err, ErrFriendshipRequired) {
		t.Fatalf("pending: expected ErrFriendshipRequired, got %v", err)
	}

	_, err = svc.CreateFriendly(t.Context(), a, a)
	if !errors.Is(err, ErrSelfBattle) {
		t.Fatalf("expected ErrSelfBattle, got %v", err)
	}

	seedFriendship(t, db, b, a, "accepted")

	created, err := svc.CreateFriendly(t.Context(), a, b)
	if err != nil {
		t.Fatalf("create friendly: %v", err)
	}
	if created.Type != battles.TypeFriendly || created.BetCoins != 0 || created.BetGems != 0 {
		t.Fatalf("friendly battle must carry no wager: %+v", created)
	}
}
