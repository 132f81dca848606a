package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uhyunpark/ordermatch/pkg/orderbook"
)

// TradeRecord is one match event as kept on the trade tape.
type TradeRecord struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Seq        uint64    `json:"seq"`
	MakerID    string    `json:"makerId"`
	MakerPrice int64     `json:"makerPrice"`
	TakerID    string    `json:"takerId"`
	TakerPrice int64     `json:"takerPrice"`
	Qty        int64     `json:"qty"`
	Time       time.Time `json:"time"`
}

// NewTradeRecord stamps t with a fresh trade id. Seq is assigned by the tape.
func NewTradeRecord(symbol string, t orderbook.Trade, at time.Time) TradeRecord {
	return TradeRecord{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		MakerID:    t.MakerID,
		MakerPrice: t.MakerPrice,
		TakerID:    t.TakerID,
		TakerPrice: t.TakerPrice,
		Qty:        t.Qty,
		Time:       at,
	}
}

func (r TradeRecord) Trade() orderbook.Trade {
	return orderbook.Trade{
		MakerID:    r.MakerID,
		MakerPrice: r.MakerPrice,
		TakerID:    r.TakerID,
		TakerPrice: r.TakerPrice,
		Qty:        r.Qty,
	}
}

// Tape is an append-only log of trades. It never holds book state.
type Tape interface {
	// Record appends rec and returns the sequence number it was stored under.
	Record(rec TradeRecord) (uint64, error)
	// Recent returns up to limit trades, newest first.
	Recent(limit int) ([]TradeRecord, error)
	Close() error
}

// MemoryTape keeps the tape in process memory.
type MemoryTape struct {
	mu     sync.RWMutex
	trades []TradeRecord
}

func NewMemoryTape() *MemoryTape { return &MemoryTape{} }

func (m *MemoryTape) Record(rec TradeRecord) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Seq = uint64(len(m.trades)) + 1
	m.trades = append(m.trades, rec)
	return rec.Seq, nil
}

func (m *MemoryTape) Recent(limit int) ([]TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit > len(m.trades) {
		limit = len(m.trades)
	}
	if limit <= 0 {
		return nil, nil
	}
	out := make([]TradeRecord, 0, limit)
	for i := len(m.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.trades[i])
	}
	return out, nil
}

func (m *MemoryTape) Close() error { return nil }

var _ Tape = (*MemoryTape)(nil)
