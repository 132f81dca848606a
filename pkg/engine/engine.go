// Package engine applies text commands to a single order book and returns
// the report each command produces.
package engine

import (
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/uhyunpark/ordermatch/pkg/command"
	"github.com/uhyunpark/ordermatch/pkg/orderbook"
	"github.com/uhyunpark/ordermatch/pkg/report"
	"github.com/uhyunpark/ordermatch/pkg/storage"
	"github.com/uhyunpark/ordermatch/pkg/util"
)

type Options struct {
	Symbol  string
	Journal storage.Journal
	Tape    storage.Tape
	Clock   util.Clock
	Logger  *zap.SugaredLogger
	// OnTrade, if set, is called for every trade in match order while the
	// engine lock is held. It must not call back into the engine.
	OnTrade func(orderbook.Trade)
}

// Stats are running counters since the engine was created.
type Stats struct {
	Commands uint64 `json:"commands"`
	Rejected uint64 `json:"rejected"`
	Trades   uint64 `json:"trades"`
	Resting  int    `json:"resting"`
}

// Engine owns one order book. Commands are applied one at a time; PRINT and
// the read accessors may run alongside each other.
type Engine struct {
	mu   sync.RWMutex
	book *orderbook.OrderBook

	symbol  string
	journal storage.Journal
	tape    storage.Tape
	clock   util.Clock
	log     *zap.SugaredLogger
	onTrade func(orderbook.Trade)

	commands atomic.Uint64
	rejected atomic.Uint64
	trades   atomic.Uint64
}

func New(opts Options) *Engine {
	e := &Engine{
		book:    orderbook.NewOrderBook(),
		symbol:  opts.Symbol,
		journal: opts.Journal,
		tape:    opts.Tape,
		clock:   opts.Clock,
		log:     opts.Logger,
		onTrade: opts.OnTrade,
	}
	if e.symbol == "" {
		e.symbol = "DEFAULT"
	}
	if e.journal == nil {
		e.journal = storage.NewNopJournal()
	}
	if e.tape == nil {
		e.tape = storage.NewMemoryTape()
	}
	if e.clock == nil {
		e.clock = util.RealClock{}
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	return e
}

// handler applies a parsed command to the book. ok is false when the
// command was rejected and nothing changed.
type handler func(e *Engine, cmd command.Command) (out string, ok bool)

var handlers = map[command.Kind]handler{
	command.KindSubmit: (*Engine).submit,
	command.KindCancel: (*Engine).cancel,
	command.KindModify: (*Engine).modify,
}

// Process applies one command line and returns its report. Malformed or
// inapplicable commands change nothing and return "".
func (e *Engine) Process(line string) string {
	e.commands.Add(1)

	cmd, err := command.Parse(line)
	if err != nil {
		e.reject(line, err.Error())
		return ""
	}

	if !cmd.Kind.Mutates() {
		return e.Depth()
	}

	h, ok := handlers[cmd.Kind]
	if !ok {
		e.reject(line, "no handler")
		return ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out, ok := h(e, cmd)
	if !ok {
		e.rejected.Add(1)
		return ""
	}
	if err := e.journal.Append(strings.Join(strings.Fields(line), " ")); err != nil {
		e.log.Errorw("journal_append_failed", "symbol", e.symbol, "err", err)
	}
	return out
}

func (e *Engine) reject(line, reason string) {
	e.rejected.Add(1)
	e.log.Debugw("command_rejected", "symbol", e.symbol, "line", line, "reason", reason)
}

func (e *Engine) submit(cmd command.Command) (string, bool) {
	o := cmd.Order()
	trades, err := e.book.Place(o)
	if err != nil {
		e.log.Debugw("command_rejected", "symbol", e.symbol, "kind", cmd.Kind, "id", cmd.ID, "reason", err.Error())
		return "", false
	}
	e.afterPlace(o, trades)
	return report.Trades(trades), true
}

func (e *Engine) cancel(cmd command.Command) (string, bool) {
	o, ok := e.book.Cancel(cmd.ID)
	if !ok {
		e.log.Debugw("command_rejected", "symbol", e.symbol, "kind", cmd.Kind, "id", cmd.ID, "reason", "unknown id")
		return "", false
	}
	e.log.Infow("order_cancelled", "symbol", e.symbol, "id", o.ID, "side", o.Side, "price", o.Price, "qty", o.Qty)
	return "", true
}

// modify replaces a resting order. The replacement keeps the original type,
// loses time priority, and may match immediately. An invalid replacement
// leaves the original untouched.
func (e *Engine) modify(cmd command.Command) (string, bool) {
	orig, ok := e.book.Lookup(cmd.ID)
	if !ok {
		e.log.Debugw("command_rejected", "symbol", e.symbol, "kind", cmd.Kind, "id", cmd.ID, "reason", "unknown id")
		return "", false
	}

	repl := cmd.Order()
	repl.Type = orig.Type
	if !repl.Validate() {
		e.log.Debugw("command_rejected", "symbol", e.symbol, "kind", cmd.Kind, "id", cmd.ID, "reason", orderbook.ErrInvalidOrder.Error())
		return "", false
	}

	e.book.Cancel(cmd.ID)
	trades, err := e.book.Place(repl)
	if err != nil {
		// Unreachable: the replacement was validated above.
		e.log.Errorw("modify_replace_failed", "symbol", e.symbol, "id", cmd.ID, "err", err)
		return "", false
	}
	e.afterPlace(repl, trades)
	return report.Trades(trades), true
}

// afterPlace publishes the trades of one placement and logs the outcome.
func (e *Engine) afterPlace(o *orderbook.Order, trades []orderbook.Trade) {
	for _, t := range trades {
		e.trades.Add(1)
		rec := storage.NewTradeRecord(e.symbol, t, e.clock.Now())
		seq, err := e.tape.Record(rec)
		if err != nil {
			e.log.Errorw("trade_record_failed", "symbol", e.symbol, "trade_id", rec.ID, "err", err)
		}
		e.log.Infow("trade",
			"symbol", e.symbol,
			"trade_id", rec.ID,
			"seq", seq,
			"maker", t.MakerID,
			"maker_price", t.MakerPrice,
			"taker", t.TakerID,
			"taker_price", t.TakerPrice,
			"qty", t.Qty,
		)
		if e.onTrade != nil {
			e.onTrade(t)
		}
	}
	if o.Qty > 0 && o.Type == orderbook.GFD {
		e.log.Infow("order_rested", "symbol", e.symbol, "id", o.ID, "side", o.Side, "price", o.Price, "qty", o.Qty, "seq", o.Seq)
	}
}

// Depth renders the PRINT report for the current book.
func (e *Engine) Depth() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return report.Depth(e.book.GetAskLevels(), e.book.GetBidLevels())
}

// RecentTrades returns up to limit trades from the tape, newest first.
func (e *Engine) RecentTrades(limit int) ([]storage.TradeRecord, error) {
	return e.tape.Recent(limit)
}

// Lookup returns a copy of a resting order.
func (e *Engine) Lookup(id string) (orderbook.Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.Lookup(id)
}

func (e *Engine) Symbol() string { return e.symbol }

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	resting := e.book.Len()
	e.mu.RUnlock()
	return Stats{
		Commands: e.commands.Load(),
		Rejected: e.rejected.Load(),
		Trades:   e.trades.Load(),
		Resting:  resting,
	}
}

// Close releases the journal and the trade tape.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	jerr := e.journal.Close()
	if err := e.tape.Close(); err != nil {
		return err
	}
	return jerr
}
