// Package sessionservice manages the till session: it turns the command
// stream coming from the terminal client into validated cart mutations
// and drives transaction settlement.
package sessionservice

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/pkg/currencypkg"
)

// Settlement provides settlement service layer interface needed by the session.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Settlement interface {
	Finish(ctx context.Context, cart *domain.Cart) (domain.SettleTxResult, error)
}

// Ledger provides the read side of the cash ledger for display.
type Ledger interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// State identifies where the session is in its input sequence.
type State string

// All session states.
const (
	StateIdle                     State = "idle"
	StateAwaitingIdentifier       State = "awaiting_identifier"
	StateAwaitingQuantity         State = "awaiting_quantity"
	StateAwaitingRemovalIndex     State = "awaiting_removal_index"
	StateAwaitingQuitConfirmation State = "awaiting_quit_confirmation"
	StateClosed                   State = "closed"
)

// CommandKind is a symbolic command name sent by the terminal client.
type CommandKind string

// All commands the session understands. CommandInput carries raw text
// (an identifier or a number) in Command.Text; the rest have no payload.
const (
	CommandAddCrate  CommandKind = "add-crate"
	CommandAddBottle CommandKind = "add-bottle"
	CommandAddEmpty  CommandKind = "add-empty"
	CommandRemove    CommandKind = "remove"
	CommandFinish    CommandKind = "finish"
	CommandCancel    CommandKind = "cancel"
	CommandQuit      CommandKind = "quit"
	CommandEscape    CommandKind = "escape"
	CommandConfirm   CommandKind = "confirm"
	CommandInput     CommandKind = "input"
)

// IsCommand returns true if name is a known command name.
func IsCommand(name string) bool {
	switch CommandKind(name) {
	case CommandAddCrate, CommandAddBottle, CommandAddEmpty,
		CommandRemove, CommandFinish, CommandCancel,
		CommandQuit, CommandEscape, CommandConfirm, CommandInput:
		return true
	}

	return false
}

// Command is one step of the session command stream.
type Command struct {
	Kind CommandKind
	Text string
}

// pendingEntry holds the in-flight multi-step add. It never leaves the
// session and is discarded whole on escape or interruption.
type pendingEntry struct {
	kind      domain.Kind
	catalogID string
	name      string
}

// Session owns all mutable till state: the cart, the input state machine
// position, the pending entry and the last status message. Commands are
// processed one at a time.
type Session struct {
	mu sync.Mutex

	catalog    domain.Catalog
	cart       *domain.Cart
	settlement Settlement
	ledger     Ledger

	state   State
	pending pendingEntry
	status  string
}

// New returns an idle session over the given catalog snapshot.
func New(catalog domain.Catalog, settlement Settlement, ledger Ledger) *Session {
	return &Session{
		catalog:    catalog,
		cart:       domain.NewCart(catalog),
		settlement: settlement,
		ledger:     ledger,
		state:      StateIdle,
	}
}

// LineView is a cart line prepared for display, amounts as fixed strings.
type LineView struct {
	CatalogID   string      `json:"catalog_id"`
	Name        string      `json:"name"`
	Kind        domain.Kind `json:"kind"`
	Quantity    int32       `json:"quantity"`
	UnitPrice   string      `json:"unit_price"`
	UnitDeposit string      `json:"unit_deposit"`
	Total       string      `json:"total"`
}

// View is the session state prepared for display.
type View struct {
	State       State      `json:"state"`
	Status      string     `json:"status"`
	Lines       []LineView `json:"lines"`
	TotalCharge string     `json:"total_charge"`
	TotalCredit string     `json:"total_credit"`
	NetAmount   string     `json:"net_amount"`
	Balance     string     `json:"balance"`
}

// Apply processes a single command and returns the refreshed view.
//
// Recoverable validation outcomes (unknown item, invalid quantity, bad
// removal index) never return an error; they surface as status messages
// and leave the cart untouched. The returned error is non-nil only when
// settlement fails against the store.
func (s *Session) Apply(ctx context.Context, cmd Command) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error

	switch s.state {
	case StateIdle:
		err = s.applyIdle(ctx, cmd)
	case StateAwaitingIdentifier:
		s.applyAwaitingIdentifier(cmd)
	case StateAwaitingQuantity:
		s.applyAwaitingQuantity(cmd)
	case StateAwaitingRemovalIndex:
		s.applyAwaitingRemovalIndex(cmd)
	case StateAwaitingQuitConfirmation:
		s.applyAwaitingQuitConfirmation(cmd)
	case StateClosed:
		s.status = "Session closed."
	}

	return s.view(ctx), err
}

// View returns the current view without applying a command.
func (s *Session) View(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view(ctx)
}

// Closed returns true once the session reached its terminal state.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == StateClosed
}

func (s *Session) applyIdle(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CommandAddCrate:
		s.beginAdd(domain.KindCrate)
	case CommandAddBottle:
		s.beginAdd(domain.KindBottle)
	case CommandAddEmpty:
		s.beginAdd(domain.KindEmpty)
	case CommandRemove:
		if s.cart.IsEmpty() {
			s.status = "Cart is empty. Nothing to remove."
			return nil
		}

		s.state = StateAwaitingRemovalIndex
		s.status = "Enter line number to remove."
	case CommandFinish:
		return s.finish(ctx)
	case CommandCancel:
		if s.cart.IsEmpty() {
			s.status = "Cart is already empty."
			return nil
		}

		s.cart.Clear()
		s.status = "Transaction cancelled. Cart cleared."
	case CommandQuit:
		if s.cart.IsEmpty() {
			s.state = StateClosed
			s.status = "Session closed."
			return nil
		}

		s.state = StateAwaitingQuitConfirmation
		s.status = "Cart not empty. Confirm to quit."
	case CommandEscape:
		s.status = ""
	default:
		// Confirm and raw input mean nothing while idle.
		s.status = ""
	}

	return nil
}

func (s *Session) beginAdd(kind domain.Kind) {
	s.pending = pendingEntry{kind: kind}
	s.state = StateAwaitingIdentifier
	s.status = fmt.Sprintf("Enter %s identifier.", kind)
}

func (s *Session) applyAwaitingIdentifier(cmd Command) {
	switch cmd.Kind {
	case CommandInput:
		entry, err := s.catalog.Entry(cmd.Text, s.pending.kind)
		if err != nil {
			s.status = fmt.Sprintf("Unknown %s: %q", s.pending.kind, cmd.Text)
			return
		}

		s.pending.catalogID = entry.ID
		s.pending.name = entry.Name
		s.state = StateAwaitingQuantity
		s.status = fmt.Sprintf("Enter quantity for %s.", entry.Name)
	case CommandEscape:
		s.cancelInput()
	default:
		// Any other command interrupts the multi-step input.
		s.cancelInput()
	}
}

func (s *Session) applyAwaitingQuantity(cmd Command) {
	switch cmd.Kind {
	case CommandInput:
		quantity, err := strconv.ParseInt(cmd.Text, 10, 32)
		if err != nil || quantity <= 0 {
			s.status = fmt.Sprintf("Invalid quantity: %q", cmd.Text)
			return
		}

		line, err := s.cart.AddLine(s.pending.catalogID, s.pending.kind, int32(quantity))
		if err != nil {
			// The identifier was validated on entry; only a bad quantity
			// can get here.
			s.status = fmt.Sprintf("Invalid quantity: %q", cmd.Text)
			return
		}

		s.pending = pendingEntry{}
		s.state = StateIdle
		s.status = fmt.Sprintf("Added %dx %s", quantity, line.Name)
	case CommandEscape:
		s.cancelInput()
	default:
		s.cancelInput()
	}
}

func (s *Session) applyAwaitingRemovalIndex(cmd Command) {
	switch cmd.Kind {
	case CommandInput:
		// Line numbers are displayed one-based.
		position, err := strconv.Atoi(cmd.Text)
		if err != nil {
			s.status = fmt.Sprintf("Invalid line number: %q", cmd.Text)
			return
		}

		removed, err := s.cart.RemoveLine(position - 1)
		if err != nil {
			s.status = fmt.Sprintf("No cart line at position %d.", position)
			return
		}

		s.state = StateIdle
		s.status = fmt.Sprintf("Removed %s", removed.Name)
	case CommandEscape:
		s.cancelInput()
	default:
		s.cancelInput()
	}
}

func (s *Session) applyAwaitingQuitConfirmation(cmd Command) {
	if cmd.Kind == CommandConfirm {
		s.state = StateClosed
		s.status = "Session closed."
		return
	}

	s.state = StateIdle
	s.status = "Quit cancelled."
}

func (s *Session) cancelInput() {
	s.pending = pendingEntry{}
	s.state = StateIdle
	s.status = "Input cancelled."
}

func (s *Session) finish(ctx context.Context) error {
	if s.cart.IsEmpty() {
		s.status = "Cart is empty. Nothing to finish."
		return nil
	}

	result, err := s.settlement.Finish(ctx, s.cart)
	if err != nil {
		s.status = "Could not settle transaction. Cart preserved."
		return domain.ErrSettlementFailed
	}

	s.status = fmt.Sprintf("Transaction finished. Total: %s. Cash: %s.",
		currencypkg.Format(result.Record.NetCashDelta),
		currencypkg.Format(result.Balance),
	)

	return nil
}

func (s *Session) view(ctx context.Context) View {
	l := zerolog.Ctx(ctx)

	lines := s.cart.Lines()
	lineViews := make([]LineView, 0, len(lines))

	for _, line := range lines {
		lineViews = append(lineViews, LineView{
			CatalogID:   line.CatalogID,
			Name:        line.Name,
			Kind:        line.Kind,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			UnitDeposit: line.UnitDeposit.StringFixed(2),
			Total:       line.Total().StringFixed(2),
		})
	}

	view := View{
		State:       s.state,
		Status:      s.status,
		Lines:       lineViews,
		TotalCharge: s.cart.TotalCharge().StringFixed(2),
		TotalCredit: s.cart.TotalCredit().StringFixed(2),
		NetAmount:   s.cart.NetAmount().StringFixed(2),
	}

	// The balance is display only; the view survives a ledger outage.
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		l.Warn().Err(err).Send()
		return view
	}

	view.Balance = balance.StringFixed(2)

	return view
}
