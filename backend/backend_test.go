package backend_test

import (
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"github.com/pylon-protocol/deployer/backend"
	btest "github.com/pylon-protocol/deployer/backend/test"
	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/wallet"
	"github.com/pylon-protocol/deployer/wallet/external"
	wtest "github.com/pylon-protocol/deployer/wallet/test"
)

const testMnemonic = "notice oak worry limit wrap speak medal online prefer cluster roof addict " +
	"wrist behave treat actual wasp year salad speed social layer crew genius"

func TestDefaultNetworks(t *testing.T) {
	networks := backend.DefaultNetworks()
	require.Len(t, networks, 3)

	local, err := backend.Lookup(networks, "local")
	require.NoError(t, err)
	require.Equal(t, "local", local.Name)
	require.Equal(t, "http://localhost:1317", local.URL)
	require.Equal(t, "localterra", local.ChainID)
	require.Equal(t, backend.DefaultGasAdjustment, local.GasAdjustment)
	require.Equal(t, []string{"uusd"}, local.FeeDenoms)
	require.Equal(t, encoding.BroadcastBlock, local.BroadcastMode)
	require.NoError(t, local.Validate())

	_, err = backend.Lookup(networks, "bombay")
	require.ErrorIs(t, err, backend.ErrUnknownNetwork)
}

func TestParseNetworks(t *testing.T) {
	networks, err := backend.ParseNetworks([]byte(`
local:
  url: http://10.0.0.2:1317
  gas_prices: 0.15uusd
  gas: 3000000
bombay:
  url: https://bombay-lcd.terra.dev
  chain_id: bombay-12
  broadcast_mode: sync
  timeout: 5s
`))
	require.NoError(t, err)

	local := networks["local"]
	require.Equal(t, "http://10.0.0.2:1317", local.URL)
	require.Equal(t, "localterra", local.ChainID, "unset fields keep the built-in value")
	require.Equal(t, uint64(3000000), local.Gas)
	require.Equal(t, "0.15uusd", local.GasPrices)

	bombay := networks["bombay"]
	require.Equal(t, "bombay", bombay.Name)
	require.Equal(t, encoding.BroadcastSync, bombay.BroadcastMode)
	require.Equal(t, 5*time.Second, bombay.Timeout)
	require.Equal(t, backend.DefaultGasPricesURL, bombay.GasPricesURL)

	_, err = backend.ParseNetworks([]byte("devnet:\n  url: http://x\n"))
	require.ErrorIs(t, err, backend.ErrInvalidNetwork)

	_, err = backend.ParseNetworks([]byte("local:\n  broadcast_mode: eventually\n"))
	require.ErrorIs(t, err, backend.ErrInvalidNetwork)
}

func TestNetworkAccount(t *testing.T) {
	n := backend.DefaultNetworks()["tequila"]
	t.Setenv(n.MnemonicEnv(), "")
	require.Equal(t, "MNEMONIC_TEQUILA", n.MnemonicEnv())

	_, err := n.Account()
	require.ErrorIs(t, err, backend.ErrMissingMnemonic)

	t.Setenv(n.MnemonicEnv(), testMnemonic)
	fromEnv, err := n.Account()
	require.NoError(t, err)

	expected, err := wallet.NewAccountFromMnemonic(testMnemonic, wallet.DefaultHDPath(), wallet.DefaultHRP)
	require.NoError(t, err)
	require.True(t, expected.Address().Equal(fromEnv.Address()))
}

func TestLocalSigner(t *testing.T) {
	rng := pkgtest.Prng(t)
	acc := wtest.NewRandomAccount(rng)
	signer := backend.NewSigner(acc)
	require.True(t, acc.Address().Equal(signer.Address()))

	msg, err := encoding.NewMsgStoreCode(signer.Address().String(), btest.NewRandomCode(rng)).AsMsg()
	require.NoError(t, err)
	doc := encoding.SignDoc{
		AccountNumber: 1,
		ChainID:       "localterra",
		Fee:           encoding.Fee{Gas: 100},
		Msgs:          []encoding.Msg{msg},
		Sequence:      5,
	}
	sig, err := signer.SignTx(doc)
	require.NoError(t, err)
	require.Equal(t, encoding.TypePubKeySecp256k1, sig.PubKey.Type)
	require.Equal(t, acc.PubKey().SerializeCompressed(), sig.PubKey.Value)

	bytes, err := doc.Bytes()
	require.NoError(t, err)
	ok, err := wallet.VerifySignature(bytes, sig.Signature, acc.PubKey())
	require.NoError(t, err)
	require.True(t, ok)

	doc.Sequence++
	other, err := doc.Bytes()
	require.NoError(t, err)
	ok, err = wallet.VerifySignature(other, sig.Signature, acc.PubKey())
	require.NoError(t, err)
	require.False(t, ok)
}

type mnemonicStore struct{}

func (mnemonicStore) PubKey(path wallet.HDPath) (*secp256k1.PublicKey, error) {
	acc, err := wallet.NewAccountFromMnemonic(testMnemonic, path, wallet.DefaultHRP)
	if err != nil {
		return nil, err
	}
	return acc.PubKey(), nil
}

func (mnemonicStore) SignData(path wallet.HDPath, data []byte) ([]byte, error) {
	acc, err := wallet.NewAccountFromMnemonic(testMnemonic, path, wallet.DefaultHRP)
	if err != nil {
		return nil, err
	}
	return acc.SignData(data)
}

func TestExternalSigner(t *testing.T) {
	acc, err := external.NewWallet(mnemonicStore{}, "").Unlock(wallet.DefaultHDPath())
	require.NoError(t, err)
	signer := backend.NewSigner(acc)

	doc := encoding.SignDoc{AccountNumber: 3, ChainID: "localterra", Fee: encoding.Fee{Gas: 1}, Sequence: 9}
	sig, err := signer.SignTx(doc)
	require.NoError(t, err)
	require.Equal(t, acc.PubKey().SerializeCompressed(), sig.PubKey.Value)

	bytes, err := doc.Bytes()
	require.NoError(t, err)
	ok, err := wallet.VerifySignature(bytes, sig.Signature, acc.PubKey())
	require.NoError(t, err)
	require.True(t, ok)
}
