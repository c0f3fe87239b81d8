package issuance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/domain/transaction"
	"github.com/zinefold/zinefold-api/internal/domain/wallet"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

type fakeLedger struct {
	result *xrpl.SubmitResult
	err    error
	calls  int
	lastTo string
}

func (f *fakeLedger) SubmitPayment(ctx context.Context, senderSeed, destination string, amount xrpl.Amount) (*xrpl.SubmitResult, error) {
	f.calls++
	f.lastTo = destination
	return f.result, f.err
}

type fakeCredits struct {
	balance  int64
	credited int64
	err      error
}

func (f *fakeCredits) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.credited += amount
	f.balance += amount
	return f.balance, nil
}

type fakeWallets struct {
	wallet   *wallet.Wallet
	err      error
	verified []uuid.UUID
}

func (f *fakeWallets) GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return f.wallet, f.err
}

func (f *fakeWallets) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	f.verified = append(f.verified, userID)
	return nil
}

type fakeAudit struct {
	rows []*transaction.Transaction
}

func (f *fakeAudit) Insert(ctx context.Context, tx *transaction.Transaction) error {
	f.rows = append(f.rows, tx)
	return nil
}

func applied(hash string) *xrpl.SubmitResult {
	r := &xrpl.SubmitResult{EngineResult: "tesSUCCESS"}
	r.TxJSON.Hash = hash
	return r
}

var testPlatform = PlatformAccount{
	Address:   "rPlatformIssuer",
	Seed:      "sEdPlatformSeed",
	AssetCode: "VPC",
}

func TestFulfillWithoutWalletCreditsOnly(t *testing.T) {
	ledger := &fakeLedger{}
	credits := &fakeCredits{}
	audit := &fakeAudit{}
	svc := NewService(ledger, credits, &fakeWallets{}, audit, testPlatform)

	res, err := svc.FulfillCreditPurchase(context.Background(), uuid.New(), 1000)
	if err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}

	if !res.Success || !res.CreditsOnly {
		t.Fatalf("result = %+v, want success credits-only", res)
	}
	if credits.credited != 1000 {
		t.Fatalf("credited %d, want 1000", credits.credited)
	}
	if ledger.calls != 0 {
		t.Fatal("no ledger call expected without a wallet")
	}
	if len(audit.rows) != 1 || audit.rows[0].Type != transaction.TypeCreditPurchase {
		t.Fatalf("audit rows = %+v", audit.rows)
	}
}

func TestFulfillLedgerFailureFallsBack(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("dial tcp: connection refused")}
	credits := &fakeCredits{}
	w := &wallet.Wallet{UserID: uuid.New(), LedgerAddress: "rHolder"}
	svc := NewService(ledger, credits, &fakeWallets{wallet: w}, &fakeAudit{}, testPlatform)

	res, err := svc.FulfillCreditPurchase(context.Background(), w.UserID, 1000)
	if err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}

	if !res.Success || !res.Fallback {
		t.Fatalf("result = %+v, want success fallback", res)
	}
	if res.XRPError == "" {
		t.Fatal("fallback result should carry the ledger error")
	}
	if credits.credited != 1000 {
		t.Fatalf("credited %d, want 1000 despite the ledger failure", credits.credited)
	}
}

func TestFulfillTrustLineMissingFallsBack(t *testing.T) {
	ledger := &fakeLedger{result: &xrpl.SubmitResult{EngineResult: "tecPATH_DRY"}}
	credits := &fakeCredits{}
	w := &wallet.Wallet{UserID: uuid.New(), LedgerAddress: "rHolder"}
	svc := NewService(ledger, credits, &fakeWallets{wallet: w}, &fakeAudit{}, testPlatform)

	res, err := svc.FulfillCreditPurchase(context.Background(), w.UserID, 500)
	if err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}

	if !res.Fallback {
		t.Fatalf("result = %+v, want fallback", res)
	}
	if credits.credited != 500 {
		t.Fatalf("credited %d, want 500", credits.credited)
	}
}

func TestFulfillMirrorsToLedger(t *testing.T) {
	ledger := &fakeLedger{result: applied("ABCDEF01")}
	credits := &fakeCredits{}
	audit := &fakeAudit{}
	w := &wallet.Wallet{UserID: uuid.New(), LedgerAddress: "rHolder"}
	wallets := &fakeWallets{wallet: w}
	svc := NewService(ledger, credits, wallets, audit, testPlatform)

	res, err := svc.FulfillCreditPurchase(context.Background(), w.UserID, 1000)
	if err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}

	if res.TxHash != "ABCDEF01" {
		t.Fatalf("tx hash = %q", res.TxHash)
	}
	if res.Fallback || res.CreditsOnly {
		t.Fatalf("result = %+v, want plain success", res)
	}
	if ledger.lastTo != "rHolder" {
		t.Fatalf("payment destination = %q", ledger.lastTo)
	}
	if len(audit.rows) != 1 || !audit.rows[0].LedgerTxHash.Valid {
		t.Fatalf("audit rows = %+v", audit.rows)
	}
	if len(wallets.verified) != 1 || wallets.verified[0] != w.UserID {
		t.Fatalf("verified = %v, want the holder marked after a delivered payment", wallets.verified)
	}
}

func TestFulfillDoesNotVerifyOnFallback(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("dial tcp: connection refused")}
	w := &wallet.Wallet{UserID: uuid.New(), LedgerAddress: "rHolder"}
	wallets := &fakeWallets{wallet: w}
	svc := NewService(ledger, &fakeCredits{}, wallets, &fakeAudit{}, testPlatform)

	if _, err := svc.FulfillCreditPurchase(context.Background(), w.UserID, 100); err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}
	if len(wallets.verified) != 0 {
		t.Fatalf("verified = %v, want none without a delivered payment", wallets.verified)
	}
}

func TestFulfillWalletLookupFailureStillCredits(t *testing.T) {
	credits := &fakeCredits{}
	svc := NewService(&fakeLedger{}, credits, &fakeWallets{err: errors.New("db down")}, &fakeAudit{}, testPlatform)

	res, err := svc.FulfillCreditPurchase(context.Background(), uuid.New(), 200)
	if err != nil {
		t.Fatalf("FulfillCreditPurchase: %v", err)
	}
	if !res.CreditsOnly || credits.credited != 200 {
		t.Fatalf("result = %+v, credited %d", res, credits.credited)
	}
}

func TestFulfillInternalLedgerFailureIsHardError(t *testing.T) {
	credits := &fakeCredits{err: errors.New("insert failed")}
	svc := NewService(&fakeLedger{}, credits, &fakeWallets{}, &fakeAudit{}, testPlatform)

	if _, err := svc.FulfillCreditPurchase(context.Background(), uuid.New(), 100); err == nil {
		t.Fatal("expected hard error when the internal ledger write fails")
	}
}

func TestIssuePlatformCreditsUnconfigured(t *testing.T) {
	svc := NewService(&fakeLedger{}, &fakeCredits{}, &fakeWallets{}, &fakeAudit{}, PlatformAccount{AssetCode: "VPC"})

	if _, err := svc.IssuePlatformCredits(context.Background(), "rHolder", 10); !errors.Is(err, ErrWalletNotConfigured) {
		t.Fatalf("got %v, want ErrWalletNotConfigured", err)
	}
}

func TestIssuePlatformCreditsTrustLineMissing(t *testing.T) {
	ledger := &fakeLedger{result: &xrpl.SubmitResult{EngineResult: "tecPATH_DRY"}}
	svc := NewService(ledger, &fakeCredits{}, &fakeWallets{}, &fakeAudit{}, testPlatform)

	if _, err := svc.IssuePlatformCredits(context.Background(), "rHolder", 10); !errors.Is(err, ErrTrustLineMissing) {
		t.Fatalf("got %v, want ErrTrustLineMissing", err)
	}
}

func TestSendPaymentReturnsEmptyHashOnRejection(t *testing.T) {
	ledger := &fakeLedger{result: &xrpl.SubmitResult{EngineResult: "tecUNFUNDED_PAYMENT"}}
	svc := NewService(ledger, &fakeCredits{}, &fakeWallets{}, &fakeAudit{}, testPlatform)

	if hash := svc.SendPayment(context.Background(), "sEdSender", "rDest", 5, "VPC", "rPlatformIssuer"); hash != "" {
		t.Fatalf("hash = %q, want empty", hash)
	}
}
