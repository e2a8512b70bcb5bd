package itch

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func putHeader(frame []byte, tag Tag, stockLocate, trackingNumber uint16, timestamp uint64) {
	frame[0] = byte(tag)
	binary.BigEndian.PutUint16(frame[1:3], stockLocate)
	binary.BigEndian.PutUint16(frame[3:5], trackingNumber)
	frame[5] = byte(timestamp >> 40)
	frame[6] = byte(timestamp >> 32)
	frame[7] = byte(timestamp >> 24)
	frame[8] = byte(timestamp >> 16)
	frame[9] = byte(timestamp >> 8)
	frame[10] = byte(timestamp)
}

func buildAddOrderFrame(stockLocate, trackingNumber uint16, timestamp, orderRef uint64, side byte, shares uint32, stock string, price uint32) []byte {
	frame := make([]byte, Width[TagAddOrder])
	putHeader(frame, TagAddOrder, stockLocate, trackingNumber, timestamp)
	binary.BigEndian.PutUint64(frame[11:19], orderRef)
	frame[19] = side
	binary.BigEndian.PutUint32(frame[20:24], shares)
	copy(frame[24:32], stock)
	binary.BigEndian.PutUint32(frame[32:36], price)
	return frame
}

func buildExecuteOrderFrame(stockLocate, trackingNumber uint16, timestamp, orderRef uint64, shares uint32, match uint64) []byte {
	frame := make([]byte, Width[TagExecuteOrder])
	putHeader(frame, TagExecuteOrder, stockLocate, trackingNumber, timestamp)
	binary.BigEndian.PutUint64(frame[11:19], orderRef)
	binary.BigEndian.PutUint32(frame[19:23], shares)
	binary.BigEndian.PutUint64(frame[23:31], match)
	return frame
}

func TestDecodeAddOrderRoundTrip(t *testing.T) {
	frame := buildAddOrderFrame(123, 456, 1234567890, 999999, 'B', 100, "AAPL    ", 1500000)

	rec, ok := Decode(frame)
	require.True(t, ok)
	require.Equal(t, TagAddOrder, rec.Tag)
	require.EqualValues(t, 123, rec.StockLocate)
	require.EqualValues(t, 456, rec.TrackingNumber)
	require.EqualValues(t, 1234567890, rec.Timestamp)
	require.EqualValues(t, 999999, rec.AddOrder.OrderReferenceNumber)
	require.Equal(t, byte('B'), rec.AddOrder.BuySellIndicator)
	require.EqualValues(t, 100, rec.AddOrder.Shares)
	require.Equal(t, "AAPL", rec.AddOrder.Stock.String())
	require.Equal(t, "150.0000", rec.AddOrder.Price.String())
}

func TestDecodeExecuteOrderRoundTrip(t *testing.T) {
	frame := buildExecuteOrderFrame(1, 2, 42, 111111, 50, 222222)

	rec, ok := Decode(frame)
	require.True(t, ok)
	require.Equal(t, TagExecuteOrder, rec.Tag)
	require.EqualValues(t, 111111, rec.ExecuteOrder.OrderReferenceNumber)
	require.EqualValues(t, 50, rec.ExecuteOrder.ExecutedShares)
	require.EqualValues(t, 222222, rec.ExecuteOrder.MatchNumber)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, ok := Decode(make([]byte, 5))
	require.False(t, ok)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	for length := 0; length <= 64; length++ {
		frame := make([]byte, length)
		if length > 0 {
			frame[0] = 'Z'
		}
		_, ok := Decode(frame)
		require.False(t, ok, "length %d", length)
	}
}

func TestDecodeRejectsForeignTags(t *testing.T) {
	for _, tag := range ForeignTags {
		frame := make([]byte, 64)
		frame[0] = byte(tag)
		_, ok := Decode(frame)
		require.False(t, ok, "foreign tag %q must not decode", tag)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	for tag, width := range Width {
		for _, length := range []int{width - 1, width + 1, 0} {
			if length < 0 {
				continue
			}
			frame := make([]byte, length)
			if length > 0 {
				frame[0] = byte(tag)
			}
			_, ok := Decode(frame)
			require.False(t, ok, "tag %q length %d (want %d)", tag, length, width)
		}
	}
}

func TestDecodeAddOrderWrongLengthSpecificCase(t *testing.T) {
	frame := make([]byte, 100)
	frame[0] = byte(TagAddOrder)
	_, ok := Decode(frame)
	require.False(t, ok)
}

// TestDecodeWireRoundTrip exercises the round-trip property on one
// well-formed AddOrder frame: decoding and then re-encoding the numeric
// fields back to big-endian reproduces the original bytes.
func TestDecodeWireRoundTrip(t *testing.T) {
	frame := buildAddOrderFrame(7, 8, 99999, 555, 'S', 10, "MSFT    ", 3250000)
	rec, ok := Decode(frame)
	require.True(t, ok)

	got := make([]byte, len(frame))
	got[0] = byte(rec.Tag)
	binary.BigEndian.PutUint16(got[1:3], rec.StockLocate)
	binary.BigEndian.PutUint16(got[3:5], rec.TrackingNumber)
	got[5] = byte(rec.Timestamp >> 40)
	got[6] = byte(rec.Timestamp >> 32)
	got[7] = byte(rec.Timestamp >> 24)
	got[8] = byte(rec.Timestamp >> 16)
	got[9] = byte(rec.Timestamp >> 8)
	got[10] = byte(rec.Timestamp)
	binary.BigEndian.PutUint64(got[11:19], rec.AddOrder.OrderReferenceNumber)
	got[19] = rec.AddOrder.BuySellIndicator
	binary.BigEndian.PutUint32(got[20:24], rec.AddOrder.Shares)
	copy(got[24:32], rec.AddOrder.Stock[:])
	binary.BigEndian.PutUint32(got[32:36], uint32(rec.AddOrder.Price))

	require.Equal(t, frame, got)
}

func TestDecodeIntoAvoidsReturnCopy(t *testing.T) {
	frame := buildExecuteOrderFrame(1, 1, 1, 1, 1, 1)
	var dst Record
	require.True(t, DecodeInto(&dst, frame))
	require.Equal(t, TagExecuteOrder, dst.Tag)
}
