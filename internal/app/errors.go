package app

import errorsmod "cosmossdk.io/errors"

const Codespace = "raffle"

// Sentinel errors returned in failed tx results.
var (
	ErrInvalidRequest    = errorsmod.Register(Codespace, 2, "invalid request")
	ErrUnknownTx         = errorsmod.Register(Codespace, 3, "unknown tx type")
	ErrUnauthorized      = errorsmod.Register(Codespace, 4, "unauthorized")
	ErrInvalidSignature  = errorsmod.Register(Codespace, 5, "invalid signature")
	ErrInvalidNonce      = errorsmod.Register(Codespace, 6, "invalid tx.nonce")
	ErrReplayedNonce     = errorsmod.Register(Codespace, 7, "replayed tx.nonce")
	ErrInsufficientFunds = errorsmod.Register(Codespace, 8, "insufficient funds")
	ErrInvalidGameConfig = errorsmod.Register(Codespace, 9, "invalid game configuration")
	ErrGameInProgress    = errorsmod.Register(Codespace, 10, "previous game has not finished")
	ErrNoGame            = errorsmod.Register(Codespace, 11, "no game")
	ErrGameNotOpen       = errorsmod.Register(Codespace, 12, "game is not open for play")
	ErrDrawNotAllowed    = errorsmod.Register(Codespace, 13, "draw not allowed")
	ErrSecretMismatch    = errorsmod.Register(Codespace, 14, "secret does not match commitment")
	ErrRefundNotAllowed  = errorsmod.Register(Codespace, 15, "refund not allowed")
	ErrNotFound          = errorsmod.Register(Codespace, 16, "not found")
)
