package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal disposition of a lifecycle command.
type Status string

const (
	// StatusPending means the transaction is submitted and awaiting
	// confirmation. Callers holding a pending command must not treat the
	// optimistic view as settled.
	StatusPending Status = "pending"
	// StatusConfirmed means the chain accepted the transaction.
	StatusConfirmed Status = "confirmed"
	// StatusRolledBack means the transaction failed and the optimistic
	// view was restored to its prior state.
	StatusRolledBack Status = "rolled_back"
)

// Command is the result of one lifecycle operation. Callers read the
// outcome from the command instead of observing mutated shared state.
type Command struct {
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	Status     Status    `json:"status"`
	Err        error     `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func newCommand(op string, now time.Time) *Command {
	return &Command{
		ID:        uuid.NewString(),
		Op:        op,
		Status:    StatusPending,
		StartedAt: now,
	}
}

func (c *Command) confirm(now time.Time) *Command {
	c.Status = StatusConfirmed
	c.FinishedAt = now
	return c
}

func (c *Command) rollback(now time.Time, err error) *Command {
	c.Status = StatusRolledBack
	c.Err = err
	c.FinishedAt = now
	return c
}

// Confirmed reports whether the command reached the chain.
func (c *Command) Confirmed() bool {
	return c.Status == StatusConfirmed
}
