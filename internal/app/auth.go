package app

import (
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

const sigLen = crypto.SignatureLength

// normalizeAddress returns the EIP-55 checksummed form of a hex address.
func normalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", errorsmod.Wrapf(ErrInvalidRequest, "invalid address %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// recoverSigner checks the envelope signature and returns the checksummed
// signer address. It needs no state, so CheckTx can call it too.
func recoverSigner(env codec.TxEnvelope) (string, error) {
	if env.Nonce == "" {
		return "", errorsmod.Wrap(ErrInvalidNonce, "missing tx.nonce")
	}
	if env.Signer == "" {
		return "", errorsmod.Wrap(ErrUnauthorized, "missing tx.signer")
	}
	if len(env.Sig) != sigLen {
		return "", errorsmod.Wrapf(ErrInvalidSignature, "invalid tx.sig length: got %d want %d", len(env.Sig), sigLen)
	}
	signer, err := normalizeAddress(env.Signer)
	if err != nil {
		return "", err
	}
	digest := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	pub, err := crypto.SigToPub(digest, env.Sig)
	if err != nil {
		return "", errorsmod.Wrap(ErrInvalidSignature, err.Error())
	}
	if got := crypto.PubkeyToAddress(*pub).Hex(); got != signer {
		return "", errorsmod.Wrapf(ErrInvalidSignature, "recovered %s, tx.signer is %s", got, signer)
	}
	return signer, nil
}

func parseNonce(raw string) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(ErrInvalidNonce, "%q is not a decimal u64", raw)
	}
	return n, nil
}

// requireAccountAuth verifies that account signed env and consumes the nonce.
// It returns the checksummed account address.
func requireAccountAuth(st *state.State, env codec.TxEnvelope, account string) (string, error) {
	if account == "" {
		return "", errorsmod.Wrap(ErrInvalidRequest, "missing account")
	}
	want, err := normalizeAddress(account)
	if err != nil {
		return "", err
	}
	signer, err := recoverSigner(env)
	if err != nil {
		return "", err
	}
	if signer != want {
		return "", errorsmod.Wrapf(ErrUnauthorized, "tx signer mismatch: signer=%s want=%s", signer, want)
	}
	nonce, err := parseNonce(env.Nonce)
	if err != nil {
		return "", err
	}
	if last, ok := st.NonceMax[signer]; ok && nonce <= last {
		return "", errorsmod.Wrapf(ErrReplayedNonce, "nonce %d <= last accepted %d", nonce, last)
	}
	st.NonceMax[signer] = nonce
	return signer, nil
}

func requireOwner(st *state.State, addr string) error {
	if st.Owner == "" || addr != st.Owner {
		return errorsmod.Wrapf(ErrUnauthorized, "%s is not the owner", addr)
	}
	return nil
}
