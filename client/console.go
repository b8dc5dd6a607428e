// Package client provides in-process engine clients.
package client

import (
	"fmt"
	"io"

	"matchd/domain/orderbook"
)

// Console is a Callback that prints each event as one line. It backs the
// interactive CLI and serves as a worked example of the callback contract.
type Console struct {
	Name string
	Out  io.Writer
}

func NewConsole(name string, out io.Writer) *Console {
	return &Console{Name: name, Out: out}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, "[%s] "+format+"\n", append([]any{c.Name}, args...)...)
}

func (c *Console) OnNew(o *orderbook.Order, ev *orderbook.NewEvent) {
	c.printf("NEW order=%d side=%v price=%v qty=%d", ev.OrderID, ev.Side, ev.Price, ev.Qty)
}

func (c *Console) OnNewReject(o *orderbook.Order, ev *orderbook.NewRejectEvent) {
	c.printf("NEW_REJECT order=%d", ev.OrderID)
}

func (c *Console) OnNewAck(o *orderbook.Order, ev *orderbook.NewAckEvent) {
	c.printf("NEW_ACK order=%d price=%v outstanding=%d", ev.OrderID, ev.Price, ev.Outstanding)
}

func (c *Console) OnCancel(o *orderbook.Order, ev *orderbook.CancelEvent) {
	c.printf("CANCEL order=%d outstanding=%d", o.ID(), ev.Outstanding)
}

func (c *Console) OnCancelReject(o *orderbook.Order, ev *orderbook.CancelRejectEvent) {
	c.printf("CANCEL_REJECT order=%d", o.ID())
}

func (c *Console) OnCancelAck(o *orderbook.Order, ev *orderbook.CancelAckEvent) {
	c.printf("CANCEL_ACK order=%d cancelled=%d", o.ID(), ev.Cancelled)
}

func (c *Console) OnExecution(o *orderbook.Order, ev *orderbook.ExecutionEvent) {
	c.printf("EXECUTION order=%d exec=%d price=%v qty=%d outstanding=%d",
		o.ID(), ev.ExecID, ev.Price, ev.Qty, o.Outstanding())
}

func (c *Console) OnExpiry(o *orderbook.Order, ev *orderbook.ExpiryEvent) {
	c.printf("EXPIRY order=%d qty=%d", o.ID(), ev.Qty)
}
