package wallet

import (
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// TerraCoinType is the SLIP-44 coin type used by Terra accounts.
const TerraCoinType uint32 = 330

const (
	purpose        uint32 = 44
	seedIterations        = 2048
	seedLength            = 64
	seedSaltPrefix        = "mnemonic"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// HDPath identifies a key below m/44'/coin'/account'/0/index.
type HDPath struct {
	CoinType uint32
	Account  uint32
	Index    uint32
}

func DefaultHDPath() HDPath {
	return HDPath{CoinType: TerraCoinType}
}

func (p HDPath) String() string {
	return fmt.Sprintf("m/%d'/%d'/%d'/0/%d", purpose, p.CoinType, p.Account, p.Index)
}

func (p HDPath) components() []uint32 {
	return []uint32{
		hdkeychain.HardenedKeyStart + purpose,
		hdkeychain.HardenedKeyStart + p.CoinType,
		hdkeychain.HardenedKeyStart + p.Account,
		0,
		p.Index,
	}
}

// NormalizeMnemonic collapses whitespace and checks the word count against
// the lengths BIP-39 allows.
func NormalizeMnemonic(mnemonic string) (string, error) {
	words := strings.Fields(strings.ToLower(mnemonic))
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return "", errors.Wrapf(ErrInvalidMnemonic, "got %d words", len(words))
	}
	return strings.Join(words, " "), nil
}

// SeedFromMnemonic derives the BIP-39 seed of a mnemonic.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	normalized, err := NormalizeMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(normalized), []byte(seedSaltPrefix+passphrase), seedIterations, seedLength, sha512.New), nil
}

// NewAccountFromMnemonic derives the account key at path from mnemonic.
func NewAccountFromMnemonic(mnemonic string, path HDPath, hrp string) (*Account, error) {
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "deriving master key")
	}
	for _, idx := range path.components() {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "deriving %s", path)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "extracting private key")
	}
	return NewAccountFromKey(priv, hrp), nil
}
