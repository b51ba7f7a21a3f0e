package txbuilder_test

import (
	"bytes"
	"math/big"
	"testing"

	txbuilder "github.com/beastmint/mintd/internal/infrastructure/tx-builder/ton"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
)

const jettonWallet = "kQDt1cugwBboev3AnobpMQOmuOLGj05e4_5NbUSMfq1sefoi"

func testAddress(fill byte) *address.Address {
	return address.NewAddress(0, 0, bytes.Repeat([]byte{fill}, 32))
}

func requireSameAddress(t *testing.T, expected, got *address.Address) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, expected.Workchain(), got.Workchain())
	require.Equal(t, expected.Data(), got.Data())
}

func TestBuildJettonTransfer(t *testing.T) {
	builder := txbuilder.NewTxBuilder()
	recipient := testAddress(0xaa)
	sender := testAddress(0xbb)
	oneJetton := new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil)

	t.Run("valid", func(t *testing.T) {
		msg, err := builder.BuildJettonTransfer(
			jettonWallet, oneJetton, recipient.String(), sender.String(), 50_000_000,
		)
		require.NoError(t, err)
		require.NotNil(t, msg)
		require.True(t, msg.Bounce)
		require.Equal(t, uint64(50_000_000), msg.AttachedValue)

		dest, err := txbuilder.ParseAddress(msg.Destination)
		require.NoError(t, err)
		expectedDest, err := txbuilder.ParseAddress(jettonWallet)
		require.NoError(t, err)
		requireSameAddress(t, expectedDest, dest)

		body, err := txbuilder.DecodeJettonTransfer(msg.Payload)
		require.NoError(t, err)
		require.Zero(t, body.QueryId)
		require.Zero(t, body.Amount.Cmp(oneJetton))
		requireSameAddress(t, recipient, body.Destination)
		requireSameAddress(t, sender, body.ResponseDestination)
		require.False(t, body.HasCustomPayload)
		require.Zero(t, body.ForwardTonAmount.Sign())
		require.False(t, body.HasForwardPayload)

		_, err = txbuilder.DecodeNftTransfer(msg.Payload)
		require.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name         string
			jettonWallet string
			amount       *big.Int
			recipient    string
		}{
			{"negative amount", jettonWallet, big.NewInt(-1), recipient.String()},
			{"nil amount", jettonWallet, nil, recipient.String()},
			{"amount overflow", jettonWallet, new(big.Int).Lsh(big.NewInt(1), 121), recipient.String()},
			{"missing recipient", jettonWallet, oneJetton, ""},
			{"bad recipient", jettonWallet, oneJetton, "not-an-address"},
			{"bad jetton wallet", "EQnope", oneJetton, recipient.String()},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				msg, err := builder.BuildJettonTransfer(
					f.jettonWallet, f.amount, f.recipient, "", 50_000_000,
				)
				require.Error(t, err)
				require.Nil(t, msg)
			})
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		msg, err := builder.BuildJettonTransfer(
			jettonWallet, big.NewInt(0), recipient.String(), "", 50_000_000,
		)
		require.NoError(t, err)
		body, err := txbuilder.DecodeJettonTransfer(msg.Payload)
		require.NoError(t, err)
		require.Zero(t, body.Amount.Sign())
		require.Nil(t, body.ResponseDestination)
	})
}

func TestBuildNftTransfer(t *testing.T) {
	builder := txbuilder.NewTxBuilder()
	nft := testAddress(0x01)
	newOwner := testAddress(0x02)

	t.Run("without response destination", func(t *testing.T) {
		msg, err := builder.BuildNftTransfer(nft.String(), newOwner.String(), "", 100_000_000)
		require.NoError(t, err)
		require.False(t, msg.Bounce)
		require.Equal(t, uint64(100_000_000), msg.AttachedValue)

		body, err := txbuilder.DecodeNftTransfer(msg.Payload)
		require.NoError(t, err)
		require.Zero(t, body.QueryId)
		requireSameAddress(t, newOwner, body.NewOwner)
		require.Nil(t, body.ResponseDestination)
		require.False(t, body.HasCustomPayload)
		require.Zero(t, body.ForwardAmount.Sign())
		require.False(t, body.HasForwardPayload)
	})

	t.Run("with response destination", func(t *testing.T) {
		sender := testAddress(0x03)
		msg, err := builder.BuildNftTransfer(
			nft.String(), newOwner.String(), sender.String(), 100_000_000,
		)
		require.NoError(t, err)

		body, err := txbuilder.DecodeNftTransfer(msg.Payload)
		require.NoError(t, err)
		requireSameAddress(t, sender, body.ResponseDestination)
	})

	t.Run("raw address form", func(t *testing.T) {
		raw := "0:" + "0202020202020202020202020202020202020202020202020202020202020202"
		msg, err := builder.BuildNftTransfer(nft.String(), raw, "", 100_000_000)
		require.NoError(t, err)

		body, err := txbuilder.DecodeNftTransfer(msg.Payload)
		require.NoError(t, err)
		requireSameAddress(t, newOwner, body.NewOwner)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := builder.BuildNftTransfer("", newOwner.String(), "", 100_000_000)
		require.Error(t, err)
		_, err = builder.BuildNftTransfer(nft.String(), "garbage", "", 100_000_000)
		require.Error(t, err)
		_, err = builder.BuildNftTransfer(nft.String(), newOwner.String(), "garbage", 1)
		require.Error(t, err)
	})
}
