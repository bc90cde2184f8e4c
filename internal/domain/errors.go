package domain

// ErrorKind classifies settlement errors so transports can map them to a
// status without switching on individual codes.
type ErrorKind int

const (
	// KindValidation covers malformed or out-of-range input, detected
	// before any state mutation.
	KindValidation ErrorKind = iota
	// KindUnauthorized covers a signer mismatch against a stored identity.
	KindUnauthorized
	// KindState covers operations invalid for the current lifecycle state.
	KindState
	// KindArithmetic covers checked overflow/underflow/division failures.
	KindArithmetic
	// KindExternal covers malformed or stale oracle data.
	KindExternal
	// KindNotFound covers missing records.
	KindNotFound
)

// Error is a settlement error with a stable machine-readable code. Every
// rejected precondition maps to exactly one Error value so callers can
// branch on cause with errors.Is.
type Error struct {
	Code string
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newErr(code string, kind ErrorKind, msg string) *Error {
	return &Error{Code: code, Kind: kind, msg: msg}
}

// Market errors.
var (
	ErrQuestionTooLong = newErr("QUESTION_TOO_LONG", KindValidation, "market question is too long (max 280 characters)")
	ErrQuestionEmpty   = newErr("QUESTION_EMPTY", KindValidation, "market question is empty")
	ErrInvalidExpiry   = newErr("INVALID_EXPIRY", KindValidation, "expiry must be in the future")
	ErrExpiryTooFar    = newErr("EXPIRY_TOO_FAR", KindValidation, "expiry cannot be more than one year in the future")
	ErrInvalidCategory = newErr("INVALID_CATEGORY", KindValidation, "category is too long (max 32 characters)")
	ErrInvalidRegion   = newErr("INVALID_REGION", KindValidation, "region is too long (max 32 characters)")

	ErrMarketNotActive       = newErr("MARKET_NOT_ACTIVE", KindState, "market is not active")
	ErrMarketExpired         = newErr("MARKET_EXPIRED", KindState, "market has expired")
	ErrMarketNotExpired      = newErr("MARKET_NOT_EXPIRED", KindState, "market has not reached its resolve date")
	ErrMarketAlreadyResolved = newErr("MARKET_ALREADY_RESOLVED", KindState, "market has already been resolved")
	ErrMarketNotResolved     = newErr("MARKET_NOT_RESOLVED", KindState, "market has not been resolved yet")
)

// Wager errors.
var (
	ErrBetTooSmall       = newErr("BET_TOO_SMALL", KindValidation, "stake is below the minimum")
	ErrBetTooLarge       = newErr("BET_TOO_LARGE", KindValidation, "stake is above the maximum")
	ErrInsufficientFunds = newErr("INSUFFICIENT_FUNDS", KindState, "insufficient ledger balance")
	ErrRateLimited       = newErr("RATE_LIMITED", KindState, "bet rate limit exceeded")
)

// Claim errors.
var (
	ErrBetLost        = newErr("BET_LOST", KindState, "bet did not win")
	ErrAlreadyClaimed = newErr("ALREADY_CLAIMED", KindState, "winnings already claimed")
	ErrNoWinningBets  = newErr("NO_WINNING_BETS", KindState, "no stakes on the winning side")
)

// Oracle errors.
var (
	ErrOracleNotSet         = newErr("ORACLE_NOT_SET", KindState, "no oracle configured for this market")
	ErrOraclePriceMismatch  = newErr("ORACLE_PRICE_MISMATCH", KindExternal, "claimed outcome contradicts the oracle price")
	ErrOraclePriceStale     = newErr("ORACLE_PRICE_STALE", KindExternal, "oracle price is stale or not live")
	ErrInvalidOracleAccount = newErr("INVALID_ORACLE_ACCOUNT", KindExternal, "record is not a valid price feed")
	ErrInvalidOracleExpo    = newErr("INVALID_ORACLE_EXPONENT", KindExternal, "price exponent out of expected range")
)

// Shielded wager errors.
var (
	ErrInvalidEncryptedData    = newErr("INVALID_ENCRYPTED_DATA", KindValidation, "invalid encrypted amount format")
	ErrInvalidProof            = newErr("INVALID_ZK_PROOF", KindValidation, "invalid range proof format")
	ErrNotMXEAuthority         = newErr("NOT_MXE_AUTHORITY", KindUnauthorized, "caller is not the aggregator authority for this pool")
	ErrShieldedPoolFinalized   = newErr("SHIELDED_POOL_FINALIZED", KindState, "aggregate pool is finalized")
	ErrShieldedBetNotClaimable = newErr("SHIELDED_BET_NOT_CLAIMABLE", KindState, "shielded bets settle through the aggregate pool, not direct claims")
)

// General errors.
var (
	ErrUnauthorized       = newErr("UNAUTHORIZED", KindUnauthorized, "unauthorized")
	ErrNotFound           = newErr("NOT_FOUND", KindNotFound, "not found")
	ErrAlreadyExists      = newErr("ALREADY_EXISTS", KindState, "already exists")
	ErrArithmeticOverflow = newErr("ARITHMETIC_OVERFLOW", KindArithmetic, "arithmetic overflow")
	ErrLockHeld           = newErr("LOCK_HELD", KindState, "lock already held")
)
