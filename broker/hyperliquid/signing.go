package hyperliquid

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

type signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V int    `json:"v"`
}

// actionHash is keccak256(msgpack(action) || nonce || vault flag). No
// vault address is ever attached, so the flag is always 0.
func actionHash(action any, nonce uint64) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(action); err != nil {
		return nil, errors.Wrap(err, "msgpack action")
	}

	data := buf.Bytes()
	data = binary.BigEndian.AppendUint64(data, nonce)
	data = append(data, 0x00)
	return crypto.Keccak256(data), nil
}

// agentTypedData wraps an action hash in the phantom agent message the
// exchange verifies. Source "a" is mainnet, "b" testnet.
func agentTypedData(connectionID []byte, mainnet bool) apitypes.TypedData {
	source := "b"
	if mainnet {
		source = "a"
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": connectionID,
		},
	}
}

// typedDataHash is the EIP-712 digest: keccak256("\x19\x01" || domain || message).
func typedDataHash(td apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, errors.Wrap(err, "hash domain")
	}
	messageHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, errors.Wrap(err, "hash message")
	}
	raw := append([]byte("\x19\x01"), domainSeparator...)
	raw = append(raw, messageHash...)
	return crypto.Keccak256(raw), nil
}

func signL1Action(key *ecdsa.PrivateKey, action any, nonce uint64, mainnet bool) (signature, error) {
	h, err := actionHash(action, nonce)
	if err != nil {
		return signature{}, err
	}
	digest, err := typedDataHash(agentTypedData(h, mainnet))
	if err != nil {
		return signature{}, err
	}

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return signature{}, errors.Wrap(err, "sign digest")
	}
	return signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: int(sig[64]) + 27,
	}, nil
}
