package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
)

// Native is the asset id of the native currency.
var Native = address.Zero

var (
	// ErrInsufficientFunds indicates a transfer larger than the source balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnauthorized indicates a transfer not signed by the source owner.
	ErrUnauthorized = errors.New("transfer not signed by account owner")
	// ErrAccountExists indicates an attempt to open an existing account.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidAmount indicates a zero-value transfer.
	ErrInvalidAmount = errors.New("transfer amount must be positive")
)

// Account is an addressable holder of balances.
type Account struct {
	Key       address.Key
	Owner     address.Key
	CreatedAt time.Time
}

// Store persists accounts and balances. Missing balances read as zero.
type Store interface {
	GetAccount(ctx context.Context, key address.Key) (Account, bool, error)
	PutAccount(ctx context.Context, account Account) error
	GetBalance(ctx context.Context, key, asset address.Key) (uint64, error)
	PutBalance(ctx context.Context, key, asset address.Key, value uint64) error
}

// Transfer moves Amount of Asset between two accounts.
type Transfer struct {
	From   address.Key
	To     address.Key
	Asset  address.Key
	Amount uint64
	Signer address.Key
}

// Ledger applies transfers against a Store.
type Ledger struct {
	store   Store
	reserve uint64
	now     func() time.Time
}

// New returns a ledger over store. reserve is the native-asset minimum every
// opened account holds.
func New(store Store, reserve uint64, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, reserve: reserve, now: now}
}

// Reserve returns the minimum balance an opened account keeps in asset. Only
// the native asset carries a reserve.
func (l *Ledger) Reserve(asset address.Key) uint64 {
	if asset != Native {
		return 0
	}
	return l.reserve
}

// Open creates an account owned by owner and funds its reserve from payer.
func (l *Ledger) Open(ctx context.Context, key, owner, payer address.Key) error {
	_, exists, err := l.store.GetAccount(ctx, key)
	if err != nil {
		return fmt.Errorf("load account %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, key)
	}
	if err := l.store.PutAccount(ctx, Account{Key: key, Owner: owner, CreatedAt: l.now().UTC()}); err != nil {
		return fmt.Errorf("put account %s: %w", key, err)
	}
	if l.reserve == 0 {
		return nil
	}
	return l.Transfer(ctx, Transfer{From: payer, To: key, Asset: Native, Amount: l.reserve, Signer: payer})
}

// Mint credits value without a source account. Used for launch token supply
// and development faucets.
func (l *Ledger) Mint(ctx context.Context, to, asset address.Key, value uint64) error {
	if value == 0 {
		return ErrInvalidAmount
	}
	if err := l.ensureWallet(ctx, to); err != nil {
		return err
	}
	current, err := l.store.GetBalance(ctx, to, asset)
	if err != nil {
		return fmt.Errorf("load balance %s: %w", to, err)
	}
	next, err := amount.Add(current, value)
	if err != nil {
		return fmt.Errorf("mint to %s: %w", to, err)
	}
	return l.store.PutBalance(ctx, to, asset, next)
}

// Balance returns the physical balance of key in asset.
func (l *Ledger) Balance(ctx context.Context, key, asset address.Key) (uint64, error) {
	return l.store.GetBalance(ctx, key, asset)
}

// Transfer moves funds atomically with respect to the underlying Store.
func (l *Ledger) Transfer(ctx context.Context, t Transfer) error {
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	from, exists, err := l.store.GetAccount(ctx, t.From)
	if err != nil {
		return fmt.Errorf("load account %s: %w", t.From, err)
	}
	owner := t.From
	if exists {
		owner = from.Owner
	}
	if t.Signer != owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, t.From)
	}
	fromBalance, err := l.store.GetBalance(ctx, t.From, t.Asset)
	if err != nil {
		return fmt.Errorf("load balance %s: %w", t.From, err)
	}
	remaining, err := amount.Sub(fromBalance, t.Amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, t.From, fromBalance, t.Amount)
	}
	if t.From == t.To {
		return nil
	}
	if err := l.ensureWallet(ctx, t.To); err != nil {
		return err
	}
	toBalance, err := l.store.GetBalance(ctx, t.To, t.Asset)
	if err != nil {
		return fmt.Errorf("load balance %s: %w", t.To, err)
	}
	credited, err := amount.Add(toBalance, t.Amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", t.To, err)
	}
	if err := l.store.PutBalance(ctx, t.From, t.Asset, remaining); err != nil {
		return fmt.Errorf("debit %s: %w", t.From, err)
	}
	if err := l.store.PutBalance(ctx, t.To, t.Asset, credited); err != nil {
		return fmt.Errorf("credit %s: %w", t.To, err)
	}
	return nil
}

// ensureWallet opens a self-owned account the first time a key receives
// funds.
func (l *Ledger) ensureWallet(ctx context.Context, key address.Key) error {
	_, exists, err := l.store.GetAccount(ctx, key)
	if err != nil {
		return fmt.Errorf("load account %s: %w", key, err)
	}
	if exists {
		return nil
	}
	return l.store.PutAccount(ctx, Account{Key: key, Owner: key, CreatedAt: l.now().UTC()})
}
