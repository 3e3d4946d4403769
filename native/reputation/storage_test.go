package reputation

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
)

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.data[string(key)] = encoded
	return nil
}

func (m *memoryStore) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, ok := m.data[string(key)]
	if !ok {
		return false, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func newTestLedger() *Ledger {
	ledger := NewLedger(newMemoryStore())
	ledger.SetNowFunc(func() int64 { return 1_700_000_000 })
	return ledger
}

func TestVerifyCreatesProfile(t *testing.T) {
	ledger := newTestLedger()
	alice := addr(0x01)

	profile, err := ledger.Verify(alice, "passport:alice")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !profile.IsVerified {
		t.Fatalf("expected verified profile")
	}
	if profile.ReputationScore != ScoreInitial {
		t.Fatalf("expected initial score %d, got %d", ScoreInitial, profile.ReputationScore)
	}
	if profile.JoinedAt != 1_700_000_000 {
		t.Fatalf("expected joinedAt from clock, got %d", profile.JoinedAt)
	}

	verified, err := ledger.IsVerified(alice)
	if err != nil {
		t.Fatalf("is verified: %v", err)
	}
	if !verified {
		t.Fatalf("expected IsVerified true after verify")
	}
}

func TestVerifyRejectsReusedIdentity(t *testing.T) {
	ledger := newTestLedger()
	alice := addr(0x01)
	bob := addr(0x02)

	if _, err := ledger.Verify(alice, "passport:shared"); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	// Normalisation means case and whitespace variants hit the same digest.
	if _, err := ledger.Verify(bob, "  PASSPORT:SHARED  "); !errors.Is(err, ErrIdentityUsed) {
		t.Fatalf("expected ErrIdentityUsed, got %v", err)
	}
	if verified, _ := ledger.IsVerified(bob); verified {
		t.Fatalf("expected bob unverified after rejected token")
	}
}

func TestVerifyRejectsSecondVerification(t *testing.T) {
	ledger := newTestLedger()
	alice := addr(0x01)
	if _, err := ledger.Verify(alice, "passport:one"); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if _, err := ledger.Verify(alice, "passport:two"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyRequiresToken(t *testing.T) {
	ledger := newTestLedger()
	if _, err := ledger.Verify(addr(0x01), "   "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}

func TestMarkTradeStartedIncrementsBothParties(t *testing.T) {
	ledger := newTestLedger()
	buyer := addr(0x01)
	seller := addr(0x02)
	mustVerify(t, ledger, buyer, "id:buyer")
	mustVerify(t, ledger, seller, "id:seller")

	if err := ledger.MarkTradeStarted(buyer, seller); err != nil {
		t.Fatalf("mark trade started: %v", err)
	}
	for _, party := range [2][20]byte{buyer, seller} {
		profile, ok, err := ledger.Profile(party)
		if err != nil || !ok {
			t.Fatalf("profile %x: ok=%v err=%v", party, ok, err)
		}
		if profile.TotalTrades != 1 {
			t.Fatalf("expected 1 total trade for %x, got %d", party, profile.TotalTrades)
		}
		if profile.SuccessfulTrades != 0 {
			t.Fatalf("expected 0 successful trades for %x, got %d", party, profile.SuccessfulTrades)
		}
	}
}

func TestMarkTradeStartedUnknownProfile(t *testing.T) {
	ledger := newTestLedger()
	buyer := addr(0x01)
	mustVerify(t, ledger, buyer, "id:buyer")
	if err := ledger.MarkTradeStarted(buyer, addr(0x09)); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestRecordOutcomeSuccess(t *testing.T) {
	ledger := newTestLedger()
	buyer := addr(0x01)
	seller := addr(0x02)
	mustVerify(t, ledger, buyer, "id:buyer")
	mustVerify(t, ledger, seller, "id:seller")

	if err := ledger.RecordOutcome(buyer, seller, true); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	for _, party := range [2][20]byte{buyer, seller} {
		score, err := ledger.ReputationOf(party)
		if err != nil {
			t.Fatalf("reputation of %x: %v", party, err)
		}
		if score != ScoreInitial+ScoreStep {
			t.Fatalf("expected score %d, got %d", ScoreInitial+ScoreStep, score)
		}
		profile, _, _ := ledger.Profile(party)
		if profile.SuccessfulTrades != 1 {
			t.Fatalf("expected 1 successful trade, got %d", profile.SuccessfulTrades)
		}
	}
}

func TestRecordOutcomeScoreCeiling(t *testing.T) {
	ledger := newTestLedger()
	buyer := addr(0x01)
	seller := addr(0x02)
	mustVerify(t, ledger, buyer, "id:buyer")
	mustVerify(t, ledger, seller, "id:seller")

	rounds := int((ScoreCeiling-ScoreInitial)/ScoreStep) + 5
	for i := 0; i < rounds; i++ {
		if err := ledger.RecordOutcome(buyer, seller, true); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}
	score, err := ledger.ReputationOf(buyer)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if score != ScoreCeiling {
		t.Fatalf("expected ceiling %d, got %d", ScoreCeiling, score)
	}
}

func TestRecordOutcomeScoreFloor(t *testing.T) {
	ledger := newTestLedger()
	buyer := addr(0x01)
	seller := addr(0x02)
	mustVerify(t, ledger, buyer, "id:buyer")
	mustVerify(t, ledger, seller, "id:seller")

	rounds := int(ScoreInitial/ScoreStep) + 5
	for i := 0; i < rounds; i++ {
		if err := ledger.RecordOutcome(buyer, seller, false); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}
	score, err := ledger.ReputationOf(seller)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected floor 0, got %d", score)
	}
	profile, _, _ := ledger.Profile(seller)
	if profile.SuccessfulTrades != 0 {
		t.Fatalf("failures must not count as successes, got %d", profile.SuccessfulTrades)
	}
}

func TestReputationOfUnknownProfile(t *testing.T) {
	ledger := newTestLedger()
	if _, err := ledger.ReputationOf(addr(0x42)); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestIdentityTokenNeverStoredRaw(t *testing.T) {
	store := newMemoryStore()
	ledger := NewLedger(store)
	token := "very-secret-passport-number"
	if _, err := ledger.Verify(addr(0x01), token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	for key := range store.data {
		if strings.Contains(key, token) {
			t.Fatalf("raw identity token leaked into storage key %q", key)
		}
	}
}

func mustVerify(t *testing.T, ledger *Ledger, a [20]byte, token string) {
	t.Helper()
	if _, err := ledger.Verify(a, token); err != nil {
		t.Fatalf("verify %x: %v", a, err)
	}
}
