package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	projectrpc "github.com/regolith-labs/ore-market/internal/rpc"
)

// Watcher polls the on-chain quote vault token account and hands the
// observed balance to a solvency check. The engine compares it against the
// sum of committed quote reserves and uncollected fees.
type Watcher struct {
	rpc      *projectrpc.Client
	vault    solana.PublicKey
	interval time.Duration
	logger   *logrus.Logger

	check func(ctx context.Context, vaultAmount uint64) error

	cancel context.CancelFunc
	done   chan struct{}
}

// Config holds watcher settings.
type Config struct {
	Vault    string
	Interval time.Duration
	Logger   *logrus.Logger
}

// NewWatcher validates the vault address and builds a watcher. check is
// called with every observed balance; a non-nil return is logged as a
// solvency alert.
func NewWatcher(rpcClient *projectrpc.Client, cfg Config, check func(ctx context.Context, vaultAmount uint64) error) (*Watcher, error) {
	if cfg.Vault == "" {
		return nil, fmt.Errorf("vault: address is required")
	}
	pub, err := solana.PublicKeyFromBase58(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("vault: invalid address %q: %w", cfg.Vault, err)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Watcher{
		rpc:      rpcClient,
		vault:    pub,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		check:    check,
		done:     make(chan struct{}),
	}, nil
}

// Balance fetches the current raw vault balance.
func (w *Watcher) Balance(ctx context.Context) (uint64, error) {
	return w.rpc.GetTokenAccountBalance(ctx, w.vault.String())
}

// Start begins the polling loop.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.WithFields(logrus.Fields{
			"vault":    w.vault.String(),
			"interval": w.interval,
		}).Info("vault watcher started")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll(ctx)
			}
		}
	}()
}

func (w *Watcher) poll(ctx context.Context) {
	amount, err := w.Balance(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("vault balance fetch failed")
		return
	}

	if err := w.check(ctx, amount); err != nil {
		w.logger.WithFields(logrus.Fields{
			"vault":   w.vault.String(),
			"balance": amount,
		}).WithError(err).Error("vault solvency check failed")
		return
	}

	w.logger.WithField("balance", amount).Debug("vault solvent")
}

// Stop halts the polling loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}
