package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// PebbleTape persists the trade tape of one symbol in a Pebble database.
type PebbleTape struct {
	mu     sync.Mutex
	db     *pebble.DB
	symbol string
	seq    uint64 // last sequence written
}

func NewPebbleTape(path, symbol string) (*PebbleTape, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open trade tape %s", path)
	}
	t := &PebbleTape{db: db, symbol: symbol}
	seq, err := t.lastSeq()
	if err != nil {
		db.Close()
		return nil, err
	}
	t.seq = seq
	return t, nil
}

// lastSeq recovers the highest sequence already on disk so a reopened tape
// keeps appending after it.
func (t *PebbleTape) lastSeq() (uint64, error) {
	prefix := tradePrefix(t.symbol)
	iter, err := t.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return 0, errors.Wrap(err, "scan trade tape")
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, nil
	}
	rest := strings.TrimPrefix(string(iter.Key()), string(prefix))
	seqPart, _, _ := strings.Cut(rest, ":")
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "corrupt trade key %q", iter.Key())
	}
	return seq, nil
}

func (t *PebbleTape) Record(rec TradeRecord) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec.Seq = t.seq + 1
	rec.Symbol = t.symbol
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, errors.Wrap(err, "marshal trade")
	}
	if err := t.db.Set(tradeKey(t.symbol, rec.Seq, rec.ID), data, pebble.NoSync); err != nil {
		return 0, errors.Wrap(err, "save trade")
	}
	t.seq = rec.Seq
	return rec.Seq, nil
}

// Recent loads the most recent trades, newest first.
func (t *PebbleTape) Recent(limit int) ([]TradeRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	prefix := tradePrefix(t.symbol)
	iter, err := t.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan trade tape")
	}
	defer iter.Close()

	var trades []TradeRecord
	for iter.Last(); iter.Valid() && len(trades) < limit; iter.Prev() {
		var rec TradeRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, errors.Wrapf(err, "unmarshal trade %q", iter.Key())
		}
		trades = append(trades, rec)
	}
	return trades, nil
}

// Close flushes unsynced writes and closes the database.
func (t *PebbleTape) Close() error {
	if err := t.db.Flush(); err != nil {
		t.db.Close()
		return errors.Wrap(err, "flush trade tape")
	}
	return t.db.Close()
}

var _ Tape = (*PebbleTape)(nil)
