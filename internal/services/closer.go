package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// ClosePolicy controls how the closer treats unexpanded recurring templates.
// Strict refuses to close; permissive closes anyway and logs what was missing.
type ClosePolicy string

const (
	CloseStrict     ClosePolicy = "strict"
	ClosePermissive ClosePolicy = "permissive"
)

// MonthCloser runs the month-close state machine: verify preconditions,
// compute every ending balance, then commit the closed month and the freshly
// opened next month as one snapshot.
type MonthCloser struct {
	repo     *storage.Repository
	expander *Expander
	events   *amqp.Client
	policy   ClosePolicy
}

func NewMonthCloser(repo *storage.Repository, expander *Expander, events *amqp.Client, policy ClosePolicy) *MonthCloser {
	if policy == "" {
		policy = CloseStrict
	}
	return &MonthCloser{repo: repo, expander: expander, events: events, policy: policy}
}

// Bootstrap creates the very first ledger month with its per-account starting
// balances. It refuses to run once any month exists; after that, months are
// created only by Close.
func (c *MonthCloser) Bootstrap(ctx context.Context, m core.MonthID, startingCents map[int64]int64) (core.Month, error) {
	months, err := c.repo.ListMonths(ctx)
	if err != nil {
		return core.Month{}, err
	}
	if len(months) > 0 {
		return core.Month{}, fmt.Errorf("ledger already initialized at %s", months[0].ID)
	}

	var total int64
	for accountID, cents := range startingCents {
		account, err := c.repo.GetBankAccount(ctx, accountID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.Month{}, fmt.Errorf("%w: bank account %d does not exist", core.ErrReferentialIntegrity, accountID)
			}
			return core.Month{}, err
		}
		if !account.CoversMonth(m) {
			return core.Month{}, fmt.Errorf("%w: bank account %q not active in %s", core.ErrReferentialIntegrity, account.Name, m)
		}
		total += cents
	}

	month := core.Month{ID: m, StartingBalance: core.Money{Cents: total}, Status: core.MonthOpen}
	if err := c.repo.CreateMonth(ctx, month); err != nil {
		return core.Month{}, err
	}
	for accountID, cents := range startingCents {
		if err := c.repo.UpsertStartingBalance(ctx, m, accountID, cents); err != nil {
			return core.Month{}, err
		}
	}

	slog.InfoContext(ctx, "Ledger bootstrapped", "month", m, "starting_cents", total, "accounts", len(startingCents))
	return month, nil
}

// Close closes month m and opens its successor. Months close strictly in
// order, each at most once; the transition commits atomically so an ending
// balance can never exist without its carried-forward starting balance.
func (c *MonthCloser) Close(ctx context.Context, m core.MonthID) (core.CloseSnapshot, error) {
	month, err := c.repo.GetMonth(ctx, m)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.CloseSnapshot{}, fmt.Errorf("%w: month %s does not exist", core.ErrReferentialIntegrity, m)
		}
		return core.CloseSnapshot{}, err
	}
	if month.Closed() {
		return core.CloseSnapshot{}, fmt.Errorf("%w: %s is already closed", core.ErrClosedMonth, m)
	}

	openBefore, err := c.repo.HasOpenMonthBefore(ctx, m)
	if err != nil {
		return core.CloseSnapshot{}, err
	}
	if openBefore {
		return core.CloseSnapshot{}, fmt.Errorf("%w: an earlier month is still open", core.ErrOutOfOrderClose)
	}

	if err := c.checkRecurrenceReady(ctx, m); err != nil {
		return core.CloseSnapshot{}, err
	}

	snapshot, err := c.computeSnapshot(ctx, month)
	if err != nil {
		return core.CloseSnapshot{}, err
	}
	if err := snapshot.Validate(); err != nil {
		return core.CloseSnapshot{}, fmt.Errorf("close snapshot for %s: %w", m, err)
	}

	if err := c.repo.ApplyMonthClose(ctx, snapshot); err != nil {
		return core.CloseSnapshot{}, err
	}

	slog.InfoContext(ctx, "Month closed",
		"month", m,
		"ending_cents", snapshot.Closed.EndingBalance.Cents,
		"next", snapshot.Next.ID,
		"accounts", len(snapshot.NextBalances))

	if c.events != nil {
		if err := c.events.PublishMonthClosed(ctx, string(m), snapshot.Closed.EndingBalance.Cents, string(snapshot.Next.ID)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish month-closed event", "month", m, "error", err)
		}
	}
	return snapshot, nil
}

// checkRecurrenceReady blocks (or just warns about) a close while templates
// remain unexpanded, so a forgotten rent entry cannot silently skip a month.
func (c *MonthCloser) checkRecurrenceReady(ctx context.Context, m core.MonthID) error {
	pending, err := c.expander.Pending(ctx, m)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	names := make([]string, len(pending))
	for i, tpl := range pending {
		names[i] = tpl.Name
	}
	if c.policy == ClosePermissive {
		slog.WarnContext(ctx, "Closing with unexpanded templates", "month", m, "templates", names)
		return nil
	}
	return fmt.Errorf("%w: %d unexpanded templates (%v)", core.ErrCloseNotReady, len(pending), names)
}

// computeSnapshot derives every balance of the transition. Per account:
// ending = starting + direct transactions + card statements due this month.
// Accounts retiring this month must end at zero and are not carried forward.
func (c *MonthCloser) computeSnapshot(ctx context.Context, month core.Month) (core.CloseSnapshot, error) {
	m := month.ID
	accounts, err := c.repo.ActiveBankAccountsForMonth(ctx, m)
	if err != nil {
		return core.CloseSnapshot{}, err
	}
	balances, err := c.repo.GetAccountMonthBalances(ctx, m)
	if err != nil {
		return core.CloseSnapshot{}, err
	}

	var (
		closedBalances []core.AccountMonthBalance
		nextBalances   []core.AccountMonthBalance
		monthEnding    int64
		nextStarting   int64
	)
	next := m.Next()

	for _, account := range accounts {
		starting := balances[account.ID].StartingBalance
		net, err := c.repo.SumAccountMonth(ctx, m, account.ID)
		if err != nil {
			return core.CloseSnapshot{}, err
		}
		ending := core.Money{Cents: starting.Cents + net}

		closedBalances = append(closedBalances, core.AccountMonthBalance{
			MonthID:         m,
			BankAccountID:   account.ID,
			StartingBalance: starting,
			EndingBalance:   &ending,
		})
		monthEnding += ending.Cents

		if account.EffectiveTo == m {
			if ending.Cents != 0 {
				return core.CloseSnapshot{}, fmt.Errorf("%w: account %q retires with %d cents outstanding",
					core.ErrUnsettledAccount, account.Name, ending.Cents)
			}
			continue
		}
		nextBalances = append(nextBalances, core.AccountMonthBalance{
			MonthID:         next,
			BankAccountID:   account.ID,
			StartingBalance: ending,
		})
		nextStarting += ending.Cents
	}

	closed := month
	closed.Status = core.MonthClosed
	closed.EndingBalance = &core.Money{Cents: monthEnding}

	return core.CloseSnapshot{
		Closed:         closed,
		ClosedBalances: closedBalances,
		Next: core.Month{
			ID:              next,
			StartingBalance: core.Money{Cents: nextStarting},
			Status:          core.MonthOpen,
		},
		NextBalances: nextBalances,
	}, nil
}
