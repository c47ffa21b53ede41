package wallet

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

// SignatureLength is the size of a bare r||s secp256k1 signature. Amino
// signatures carry neither the DER framing nor the recovery byte.
const SignatureLength = 64

func signCompact(key *secp256k1.PrivateKey, hash []byte) ([]byte, error) {
	// SignCompact prefixes the recovery code, which the chain does not expect.
	sig := ecdsa.SignCompact(key, hash, true)
	if len(sig) != SignatureLength+1 {
		return nil, errors.Errorf("unexpected compact signature length %d", len(sig))
	}
	return sig[1:], nil
}

// VerifySignature reports whether sig is a valid r||s signature over the
// SHA-256 digest of msg for the given public key.
func VerifySignature(msg, sig []byte, pubKey *secp256k1.PublicKey) (bool, error) {
	if len(sig) != SignatureLength {
		return false, errors.Errorf("signature is of wrong length. Expected %d bytes, got %d bytes", SignatureLength, len(sig))
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false, errors.New("signature r overflows curve order")
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false, errors.New("signature s overflows curve order")
	}
	hash := sha256.Sum256(msg)
	return ecdsa.NewSignature(&r, &s).Verify(hash[:], pubKey), nil
}
