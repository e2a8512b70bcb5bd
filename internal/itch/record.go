package itch

import (
	"bytes"
	"fmt"
	"math/bits"
	"strconv"
)

// bswap16/32/64 are the byte-swap primitives the wire decoder composes with
// big-endian field reads. math/bits.ReverseBytesN is the stdlib's own
// byte-swap intrinsic (it compiles to a single BSWAP/REV instruction on
// amd64/arm64); no third-party package in the retrieval pack offers a
// narrower-purpose replacement, so the standard library is used directly.
func bswap16(v uint16) uint16 { return bits.ReverseBytes16(v) }
func bswap32(v uint32) uint32 { return bits.ReverseBytes32(v) }
func bswap64(v uint64) uint64 { return bits.ReverseBytes64(v) }

// putUint48 and getUint48 pack/unpack the header's 48-bit timestamp field in
// host (little-endian) byte order for on-disk persistence. ntoh48 reads the
// same field off the wire, which is big-endian.
func putUint48(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
}

func getUint48(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
}

func ntoh48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// Price is a 32-bit unsigned fixed-point price with four implied decimal places.
type Price uint32

// String renders the decimal value, e.g. Price(1500000).String() == "150.0000".
func (p Price) String() string {
	whole := uint32(p) / 10000
	frac := uint32(p) % 10000
	buf := strconv.AppendUint(make([]byte, 0, 12), uint64(whole), 10)
	buf = append(buf, '.')
	buf = appendPadded(buf, frac, 4)
	return string(buf)
}

func appendPadded(buf []byte, v uint32, width int) []byte {
	tmp := strconv.AppendUint(make([]byte, 0, width), uint64(v), 10)
	for i := 0; i < width-len(tmp); i++ {
		buf = append(buf, '0')
	}
	return append(buf, tmp...)
}

// Symbol is an 8-byte, right space-padded ITCH stock symbol field.
type Symbol [8]byte

// String returns the longest left-aligned prefix ending in a non-space byte.
func (s Symbol) String() string {
	return string(bytes.TrimRight(s[:], " "))
}

// AddOrder is message type A: the most frequent ITCH message, ~40% of traffic.
type AddOrder struct {
	OrderReferenceNumber uint64
	BuySellIndicator     byte
	Shares               uint32
	Stock                Symbol
	Price                Price
}

// ExecuteOrder is message type E, the second most frequent, ~25% of traffic.
type ExecuteOrder struct {
	OrderReferenceNumber uint64
	ExecutedShares       uint32
	MatchNumber          uint64
}

// ExecuteOrderWithPrice is message type C.
type ExecuteOrderWithPrice struct {
	OrderReferenceNumber uint64
	ExecutedShares       uint32
	MatchNumber          uint64
	Printable            byte
	ExecutionPrice       Price
}

// OrderCancel is message type X.
type OrderCancel struct {
	OrderReferenceNumber uint64
	CancelledShares      uint32
}

// OrderDelete is message type D.
type OrderDelete struct {
	OrderReferenceNumber uint64
}

// OrderReplace is message type U.
type OrderReplace struct {
	OriginalOrderReferenceNumber uint64
	NewOrderReferenceNumber     uint64
	Shares                      uint32
	Price                       Price
}

// Trade is message type P, a non-cross trade print.
type Trade struct {
	OrderReferenceNumber uint64
	BuySellIndicator     byte
	Shares               uint32
	Stock                Symbol
	Price                Price
	MatchNumber          uint64
}

// SystemEvent is message type S.
type SystemEvent struct {
	EventCode byte
}

// StockDirectory is message type R.
type StockDirectory struct {
	Stock                        Symbol
	MarketCategory               byte
	FinancialStatusIndicator     byte
	RoundLotSize                 uint32
	RoundLotsOnly                byte
	IssueClassification          byte
	IssueSubType                 [2]byte
	Authenticity                 byte
	ShortSaleThresholdIndicator  byte
	IPOFlag                      byte
	LULDReferencePriceTier       byte
	ETPFlag                      byte
	ETPLeverageFactor            uint32
	InverseIndicator             byte
}

// Record is a tagged, plain-old-data union of every decodable ITCH variant
// plus the shared header and an ingress timestamp. Only the field named by
// Tag is populated; reading another variant's field is undefined, matching
// the source union's semantics without resorting to an interface or any
// heap indirection.
type Record struct {
	Tag            Tag
	StockLocate    uint16
	TrackingNumber uint16
	Timestamp      uint64 // nanoseconds since local midnight, as decoded off the wire
	IngressNanos   uint64 // stamped by the time source at decode time

	AddOrder              AddOrder
	ExecuteOrder          ExecuteOrder
	ExecuteOrderWithPrice ExecuteOrderWithPrice
	OrderCancel           OrderCancel
	OrderDelete           OrderDelete
	OrderReplace          OrderReplace
	Trade                 Trade
	SystemEvent           SystemEvent
	StockDirectory        StockDirectory
}

func (r *Record) writeHeader(dst []byte) int {
	dst[0] = byte(r.Tag)
	dst[1] = byte(r.StockLocate)
	dst[2] = byte(r.StockLocate >> 8)
	dst[3] = byte(r.TrackingNumber)
	dst[4] = byte(r.TrackingNumber >> 8)
	putUint48(dst[5:11], r.Timestamp)
	return headerWidth
}

// Serialize writes the record's decoded, host-byte-order image into dst and
// returns the number of bytes written: the persisted on-disk layout, not the
// ITCH wire format. dst must be at least WidthFor(r.Tag) bytes.
func (r *Record) Serialize(dst []byte) (int, error) {
	width, ok := WidthFor(r.Tag)
	if !ok {
		return 0, fmt.Errorf("itch: record tag %q not recognized at serialize time", r.Tag)
	}
	if len(dst) < width {
		return 0, fmt.Errorf("itch: serialize buffer too small: need %d, have %d", width, len(dst))
	}
	n := r.writeHeader(dst)
	switch r.Tag {
	case TagAddOrder:
		n += encodeAddOrder(dst[n:], &r.AddOrder)
	case TagExecuteOrder:
		n += encodeExecuteOrder(dst[n:], &r.ExecuteOrder)
	case TagExecuteOrderWithPrice:
		n += encodeExecuteOrderWithPrice(dst[n:], &r.ExecuteOrderWithPrice)
	case TagOrderCancel:
		n += encodeOrderCancel(dst[n:], &r.OrderCancel)
	case TagOrderDelete:
		n += encodeOrderDelete(dst[n:], &r.OrderDelete)
	case TagOrderReplace:
		n += encodeOrderReplace(dst[n:], &r.OrderReplace)
	case TagTrade:
		n += encodeTrade(dst[n:], &r.Trade)
	case TagSystemEvent:
		n += encodeSystemEvent(dst[n:], &r.SystemEvent)
	case TagStockDirectory:
		n += encodeStockDirectory(dst[n:], &r.StockDirectory)
	default:
		return 0, fmt.Errorf("itch: record tag %q not recognized at serialize time", r.Tag)
	}
	return n, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
func putU64(b []byte, v uint64) {
	putU32(b[0:4], uint32(v))
	putU32(b[4:8], uint32(v>>32))
}

func encodeAddOrder(dst []byte, a *AddOrder) int {
	putU64(dst[0:8], a.OrderReferenceNumber)
	dst[8] = a.BuySellIndicator
	putU32(dst[9:13], a.Shares)
	copy(dst[13:21], a.Stock[:])
	putU32(dst[21:25], uint32(a.Price))
	return 25
}

func encodeExecuteOrder(dst []byte, e *ExecuteOrder) int {
	putU64(dst[0:8], e.OrderReferenceNumber)
	putU32(dst[8:12], e.ExecutedShares)
	putU64(dst[12:20], e.MatchNumber)
	return 20
}

func encodeExecuteOrderWithPrice(dst []byte, e *ExecuteOrderWithPrice) int {
	putU64(dst[0:8], e.OrderReferenceNumber)
	putU32(dst[8:12], e.ExecutedShares)
	putU64(dst[12:20], e.MatchNumber)
	dst[20] = e.Printable
	putU32(dst[21:25], uint32(e.ExecutionPrice))
	return 25
}

func encodeOrderCancel(dst []byte, x *OrderCancel) int {
	putU64(dst[0:8], x.OrderReferenceNumber)
	putU32(dst[8:12], x.CancelledShares)
	return 12
}

func encodeOrderDelete(dst []byte, d *OrderDelete) int {
	putU64(dst[0:8], d.OrderReferenceNumber)
	return 8
}

func encodeOrderReplace(dst []byte, u *OrderReplace) int {
	putU64(dst[0:8], u.OriginalOrderReferenceNumber)
	putU64(dst[8:16], u.NewOrderReferenceNumber)
	putU32(dst[16:20], u.Shares)
	putU32(dst[20:24], uint32(u.Price))
	return 24
}

func encodeTrade(dst []byte, p *Trade) int {
	putU64(dst[0:8], p.OrderReferenceNumber)
	dst[8] = p.BuySellIndicator
	putU32(dst[9:13], p.Shares)
	copy(dst[13:21], p.Stock[:])
	putU32(dst[21:25], uint32(p.Price))
	putU64(dst[25:33], p.MatchNumber)
	return 33
}

func encodeSystemEvent(dst []byte, s *SystemEvent) int {
	dst[0] = s.EventCode
	return 1
}

func encodeStockDirectory(dst []byte, r *StockDirectory) int {
	copy(dst[0:8], r.Stock[:])
	dst[8] = r.MarketCategory
	dst[9] = r.FinancialStatusIndicator
	putU32(dst[10:14], r.RoundLotSize)
	dst[14] = r.RoundLotsOnly
	dst[15] = r.IssueClassification
	copy(dst[16:18], r.IssueSubType[:])
	dst[18] = r.Authenticity
	dst[19] = r.ShortSaleThresholdIndicator
	dst[20] = r.IPOFlag
	dst[21] = r.LULDReferencePriceTier
	dst[22] = r.ETPFlag
	putU32(dst[23:27], r.ETPLeverageFactor)
	dst[27] = r.InverseIndicator
	return 28
}
