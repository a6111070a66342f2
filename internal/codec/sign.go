package codec

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"
)

// SignTx builds a signed envelope for msg and returns its wire bytes.
func SignTx(key *ecdsa.PrivateKey, typ string, msg any, nonce uint64) ([]byte, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s value: %w", typ, err)
	}
	signer := crypto.PubkeyToAddress(key.PublicKey).Hex()
	n := strconv.FormatUint(nonce, 10)
	sig, err := crypto.Sign(SignBytes(typ, value, n, signer), key)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", typ, err)
	}
	return json.Marshal(TxEnvelope{
		Type:   typ,
		Value:  value,
		Nonce:  n,
		Signer: signer,
		Sig:    sig,
	})
}
