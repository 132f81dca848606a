package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/ordermatch/pkg/orderbook"
)

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func trade(maker, taker string, qty int64) orderbook.Trade {
	return orderbook.Trade{MakerID: maker, MakerPrice: 1000, TakerID: taker, TakerPrice: 1010, Qty: qty}
}

func TestFileJournal_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "commands.log")
	j, err := NewFileJournal(path)
	require.NoError(t, err)

	require.NoError(t, j.Append("BUY GFD 1000 10 order1"))
	require.NoError(t, j.Append("CANCEL order1"))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BUY GFD 1000 10 order1\nCANCEL order1\n", string(data))

	// Reopening appends instead of truncating.
	j, err = NewFileJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append("PRINT"))
	require.NoError(t, j.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestNewTradeRecord(t *testing.T) {
	tr := trade("order1", "order2", 10)
	a := NewTradeRecord("TEST", tr, testTime)
	b := NewTradeRecord("TEST", tr, testTime)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID, "trade ids must be unique")
	assert.Equal(t, "TEST", a.Symbol)
	assert.Equal(t, testTime, a.Time)
	assert.Equal(t, tr, a.Trade())
}

func testTape(t *testing.T, tape Tape) {
	t.Helper()

	recent, err := tape.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	for i, qty := range []int64{1, 2, 3} {
		seq, err := tape.Record(NewTradeRecord("TEST", trade("m", "t", qty), testTime))
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}

	recent, err = tape.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].Qty, "newest first")
	assert.Equal(t, uint64(3), recent[0].Seq)
	assert.Equal(t, int64(2), recent[1].Qty)

	recent, err = tape.Recent(100)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	recent, err = tape.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemoryTape(t *testing.T) {
	testTape(t, NewMemoryTape())
}

func TestPebbleTape(t *testing.T) {
	tape, err := NewPebbleTape(filepath.Join(t.TempDir(), "trades"), "TEST")
	require.NoError(t, err)
	defer tape.Close()
	testTape(t, tape)
}

func TestPebbleTape_ReopenContinuesSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trades")

	tape, err := NewPebbleTape(dir, "TEST")
	require.NoError(t, err)
	_, err = tape.Record(NewTradeRecord("TEST", trade("a", "b", 5), testTime))
	require.NoError(t, err)
	_, err = tape.Record(NewTradeRecord("TEST", trade("c", "d", 6), testTime))
	require.NoError(t, err)
	require.NoError(t, tape.Close())

	tape, err = NewPebbleTape(dir, "TEST")
	require.NoError(t, err)
	defer tape.Close()

	seq, err := tape.Record(NewTradeRecord("TEST", trade("e", "f", 7), testTime))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)

	recent, err := tape.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"e", "c", "a"}, []string{recent[0].MakerID, recent[1].MakerID, recent[2].MakerID})
	assert.True(t, testTime.Equal(recent[2].Time))
}

func TestPebbleTape_SymbolsIsolated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trades")

	tape, err := NewPebbleTape(dir, "AAA")
	require.NoError(t, err)
	_, err = tape.Record(NewTradeRecord("AAA", trade("a", "b", 1), testTime))
	require.NoError(t, err)
	require.NoError(t, tape.Close())

	tape, err = NewPebbleTape(dir, "BBB")
	require.NoError(t, err)
	defer tape.Close()
	recent, err := tape.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestKeyUpperBound(t *testing.T) {
	prefix := tradePrefix("TEST")
	assert.Equal(t, "trade:TEST;", string(keyUpperBound(prefix)))
	assert.Less(t, string(tradeKey("TEST", 99, "x")), string(tradeKey("TEST", 100, "a")))
}
