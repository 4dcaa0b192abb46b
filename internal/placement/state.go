package placement

import (
	"context"
	"log/slog"
)

type State string

const (
	StateReceived          State = "received"
	StateValidating        State = "validating"
	StateCheckingInventory State = "checking_inventory"
	StateCommitting        State = "committing"
	StatePublishing        State = "publishing"
	StateCompleted         State = "completed"
	StateRejected          State = "rejected"
	StateFailed            State = "failed"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRejected || s == StateFailed
}

// attempt tracks one placement attempt through its states.
type attempt struct {
	orderID string
	state   State
	logger  *slog.Logger
}

func newAttempt(orderID string, logger *slog.Logger) *attempt {
	return &attempt{
		orderID: orderID,
		state:   StateReceived,
		logger:  logger,
	}
}

func (a *attempt) transition(ctx context.Context, next State) {
	if a.state.Terminal() {
		return
	}
	a.logger.DebugContext(ctx, "placement state changed", "order_id", a.orderID, "from", a.state, "to", next)
	a.state = next
}

// finish moves the attempt to the terminal state matching err.
func (a *attempt) finish(ctx context.Context, err error) State {
	a.transition(ctx, TerminalState(err))
	return a.state
}
