// Package oracle parses third-party price-feed records used for automatic
// market resolution.
//
// The supported record is the fixed little-endian layout published by the
// Pyth push oracle (v1 price accounts, stable since 2022):
//
//	offset  field        type
//	     0  magic        u32   must equal 0xa1b2c3d4
//	    20  exponent     i32   price scale, e.g. -8 means price * 10^-8
//	   208  agg.price    i64   the aggregate price
//	   224  agg.status   u32   1 = Trading (live quote)
//	   232  agg.pub_slot u64   slot the price was last published at
//
// Parsing is a pure function of (bytes, current slot). Beyond the magic
// match there is no ownership check: the record is validated structurally,
// not cryptographically attested.
package oracle

import (
	"encoding/binary"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// SentinelFeed marks a market whose oracle authority attests prices
// directly instead of pointing at a live feed record.
const SentinelFeed = "attested"

const (
	// Magic identifies a price record.
	Magic uint32 = 0xa1b2c3d4

	// MinRecordLen is the minimum record size covering every parsed field.
	MinRecordLen = 240

	// MaxPriceAgeSlots is the freshness window: a price published more
	// than this many slots before the current slot is stale.
	MaxPriceAgeSlots uint64 = 25

	// MinExponent and MaxExponent bound the accepted price scale. Live
	// feeds use exponents like -8 or -6, never positive.
	MinExponent int32 = -12
	MaxExponent int32 = 0

	statusTrading uint32 = 1

	offExponent = 20
	offPrice    = 208
	offStatus   = 224
	offPubSlot  = 232
)

// Price is a validated feed price at its native scale.
type Price struct {
	// Value is the raw aggregate price, to be compared against thresholds
	// stored at the same scale.
	Value int64
	// Exponent is the validated decimal scale of Value.
	Exponent int32
	// PubSlot is the slot the price was published at.
	PubSlot uint64
}

// ReadPrice validates a raw price record against the current slot and
// returns the aggregate price. Each check maps to a distinct failure:
// short or mismagicked records are InvalidOracleAccount, an out-of-range
// exponent is InvalidOracleExponent, and a missing, old, or non-live quote
// is OraclePriceStale.
func ReadPrice(data []byte, currentSlot uint64) (Price, error) {
	if len(data) < MinRecordLen {
		return Price{}, domain.ErrInvalidOracleAccount
	}

	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return Price{}, domain.ErrInvalidOracleAccount
	}

	expo := int32(binary.LittleEndian.Uint32(data[offExponent : offExponent+4]))
	if expo < MinExponent || expo > MaxExponent {
		return Price{}, domain.ErrInvalidOracleExpo
	}

	pubSlot := binary.LittleEndian.Uint64(data[offPubSlot : offPubSlot+8])
	var age uint64
	if currentSlot > pubSlot {
		age = currentSlot - pubSlot
	}
	if pubSlot == 0 || age > MaxPriceAgeSlots {
		return Price{}, domain.ErrOraclePriceStale
	}

	if binary.LittleEndian.Uint32(data[offStatus:offStatus+4]) != statusTrading {
		return Price{}, domain.ErrOraclePriceStale
	}

	value := int64(binary.LittleEndian.Uint64(data[offPrice : offPrice+8]))
	return Price{Value: value, Exponent: expo, PubSlot: pubSlot}, nil
}
