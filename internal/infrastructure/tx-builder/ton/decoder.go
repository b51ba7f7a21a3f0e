package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

type JettonTransferBody struct {
	QueryId             uint64
	Amount              *big.Int
	Destination         *address.Address
	ResponseDestination *address.Address
	HasCustomPayload    bool
	ForwardTonAmount    *big.Int
	HasForwardPayload   bool
}

type NftTransferBody struct {
	QueryId             uint64
	NewOwner            *address.Address
	ResponseDestination *address.Address
	HasCustomPayload    bool
	ForwardAmount       *big.Int
	HasForwardPayload   bool
}

func DecodeJettonTransfer(boc []byte) (*JettonTransferBody, error) {
	s, err := openBody(boc, OpJettonTransfer)
	if err != nil {
		return nil, err
	}

	body := &JettonTransferBody{}
	if body.QueryId, err = s.LoadUInt(64); err != nil {
		return nil, err
	}
	if body.Amount, err = s.LoadBigCoins(); err != nil {
		return nil, err
	}
	if body.Destination, err = loadAddress(s); err != nil {
		return nil, err
	}
	if body.ResponseDestination, err = loadAddress(s); err != nil {
		return nil, err
	}
	if body.HasCustomPayload, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	if body.ForwardTonAmount, err = s.LoadBigCoins(); err != nil {
		return nil, err
	}
	if body.HasForwardPayload, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	return body, nil
}

func DecodeNftTransfer(boc []byte) (*NftTransferBody, error) {
	s, err := openBody(boc, OpNftTransfer)
	if err != nil {
		return nil, err
	}

	body := &NftTransferBody{}
	if body.QueryId, err = s.LoadUInt(64); err != nil {
		return nil, err
	}
	if body.NewOwner, err = loadAddress(s); err != nil {
		return nil, err
	}
	if body.ResponseDestination, err = loadAddress(s); err != nil {
		return nil, err
	}
	if body.HasCustomPayload, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	if body.ForwardAmount, err = s.LoadBigCoins(); err != nil {
		return nil, err
	}
	if body.HasForwardPayload, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	return body, nil
}

func openBody(boc []byte, expectedOp uint64) (*cell.Slice, error) {
	c, err := cell.FromBOC(boc)
	if err != nil {
		return nil, fmt.Errorf("invalid boc: %w", err)
	}
	s := c.BeginParse()
	op, err := s.LoadUInt(32)
	if err != nil {
		return nil, err
	}
	if op != expectedOp {
		return nil, fmt.Errorf("unexpected op code %#x, expected %#x", op, expectedOp)
	}
	return s, nil
}

// loadAddress reads a MsgAddress. addr_none is returned as nil, only
// addr_std without anycast is supported.
func loadAddress(s *cell.Slice) (*address.Address, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 2:
		anycast, err := s.LoadUInt(1)
		if err != nil {
			return nil, err
		}
		if anycast != 0 {
			return nil, fmt.Errorf("anycast addresses are not supported")
		}
		wc, err := s.LoadUInt(8)
		if err != nil {
			return nil, err
		}
		data, err := s.LoadSlice(256)
		if err != nil {
			return nil, err
		}
		return address.NewAddress(0, byte(wc), data), nil
	default:
		return nil, fmt.Errorf("unsupported address tag %d", tag)
	}
}
