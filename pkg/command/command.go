// Package command turns one text command line into a typed Command.
//
// Grammar (whitespace-delimited, case-sensitive):
//
//	BUY <GFD|IOC> <price> <qty> <id>
//	SELL <GFD|IOC> <price> <qty> <id>
//	CANCEL <id>
//	MODIFY <id> <BUY|SELL> <price> <qty>
//	PRINT
package command

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/uhyunpark/ordermatch/pkg/orderbook"
)

// Kind classifies a parsed command.
type Kind uint8

const (
	KindSubmit Kind = iota + 1
	KindCancel
	KindModify
	KindPrint
)

func (k Kind) String() string {
	switch k {
	case KindSubmit:
		return "submit"
	case KindCancel:
		return "cancel"
	case KindModify:
		return "modify"
	case KindPrint:
		return "print"
	}
	return "unknown"
}

// Mutates reports whether commands of this kind may change the book.
func (k Kind) Mutates() bool { return k != KindPrint }

var (
	ErrEmpty       = errors.New("empty command")
	ErrUnknownVerb = errors.New("unknown command")
	ErrArity       = errors.New("wrong number of arguments")
	ErrBadNumber   = errors.New("not an integer")
	ErrBadSide     = errors.New("side must be BUY or SELL")
	ErrBadType     = errors.New("order type must be GFD or IOC")
)

// Command is the typed form of one input line. Fields not used by a Kind
// are left zero; Type is unset for MODIFY (the resting order's type wins).
type Command struct {
	Kind  Kind
	ID    string
	Side  orderbook.Side
	Type  orderbook.OrderType
	Price int64
	Qty   int64
}

// Order builds the order a submit or modify command asks for.
func (c Command) Order() *orderbook.Order {
	return &orderbook.Order{ID: c.ID, Side: c.Side, Type: c.Type, Price: c.Price, Qty: c.Qty}
}

type parser struct {
	arity int
	parse func(tokens []string) (Command, error)
}

// parsers is the dispatch table keyed by the leading token.
var parsers = map[string]parser{
	"BUY":    {arity: 5, parse: parseSubmit},
	"SELL":   {arity: 5, parse: parseSubmit},
	"CANCEL": {arity: 2, parse: parseCancel},
	"MODIFY": {arity: 5, parse: parseModify},
	"PRINT":  {arity: 1, parse: parsePrint},
}

// Parse tokenizes line and validates its shape. Order sanity (positive
// price/qty) is left to the book so that MODIFY and BUY/SELL share it.
func Parse(line string) (Command, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}
	p, ok := parsers[tokens[0]]
	if !ok {
		return Command{}, errors.Wrapf(ErrUnknownVerb, "%q", tokens[0])
	}
	if len(tokens) != p.arity {
		return Command{}, errors.Wrapf(ErrArity, "%s takes %d tokens, got %d", tokens[0], p.arity, len(tokens))
	}
	return p.parse(tokens)
}

func parseSubmit(tokens []string) (Command, error) {
	side, _ := orderbook.ParseSide(tokens[0])
	typ, ok := orderbook.ParseOrderType(tokens[1])
	if !ok {
		return Command{}, errors.Wrapf(ErrBadType, "%q", tokens[1])
	}
	price, qty, err := parsePriceQty(tokens[2], tokens[3])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindSubmit, ID: tokens[4], Side: side, Type: typ, Price: price, Qty: qty}, nil
}

func parseCancel(tokens []string) (Command, error) {
	return Command{Kind: KindCancel, ID: tokens[1]}, nil
}

func parseModify(tokens []string) (Command, error) {
	side, ok := orderbook.ParseSide(tokens[2])
	if !ok {
		return Command{}, errors.Wrapf(ErrBadSide, "%q", tokens[2])
	}
	price, qty, err := parsePriceQty(tokens[3], tokens[4])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindModify, ID: tokens[1], Side: side, Price: price, Qty: qty}, nil
}

func parsePrint([]string) (Command, error) {
	return Command{Kind: KindPrint}, nil
}

func parsePriceQty(priceTok, qtyTok string) (int64, int64, error) {
	price, err := parseInt(priceTok)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadNumber, "price %q", priceTok)
	}
	qty, err := parseInt(qtyTok)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadNumber, "quantity %q", qtyTok)
	}
	return price, qty, nil
}

// parseInt reads a base-10 int64. A leading '-' is allowed so negative
// values reach the book's validation; a leading '+' is not.
func parseInt(tok string) (int64, error) {
	if strings.HasPrefix(tok, "+") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(tok, 10, 64)
}
