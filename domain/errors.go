package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidChainId      = errors.New("invalid chain id")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")

	// sweep settlement taxonomy
	ErrStaleListing         = errors.New("listing is stale")
	ErrAllCandidatesStale   = errors.New("all listing candidates are stale")
	ErrInsufficientBalance  = errors.New("insufficient payment token balance")
	ErrApprovalFailed       = errors.New("allowance approval transaction failed")
	ErrDailyLimitExceeded   = errors.New("daily spend limit exceeded")
	ErrBatchReverted        = errors.New("settlement batch reverted")
	ErrConfirmationTimeout  = errors.New("transaction confirmation timed out")
	ErrSweepInProgress      = errors.New("a sweep is already in progress for this wallet")
	ErrNothingToSweep       = errors.New("no settlable listings matched the request")
	ErrUnsupportedChain     = errors.New("unsupported chain")
	ErrNoWalletKey          = errors.New("no signing key for wallet")
	ErrMarketplaceExhausted = errors.New("all marketplace endpoints failed")
)
