// Package exchange decodes the Polymarket exchange contract events the
// pipeline consumes. Both the CTF Exchange and the Neg Risk Exchange emit
// the same OrderFilled / OrdersMatched ABI, so one decoder serves both.
package exchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/alanyoungcy/polystream/internal/chain"
)

// Deployed exchange contract addresses on Polygon.
var (
	CTFExchangeAddress     = common.HexToAddress("0x4bfb41d5b3570defd03c39a9a4d8de6bd8b8982e")
	NegRiskExchangeAddress = common.HexToAddress("0xc5d563a36ae78145c45a50134d48a1215220f80a")
)

// Event signature topics.
var (
	OrderFilledTopic = crypto.Keccak256Hash(
		[]byte("OrderFilled(bytes32,address,address,uint256,uint256,uint256,uint256,uint256)"))
	OrdersMatchedTopic = crypto.Keccak256Hash(
		[]byte("OrdersMatched(bytes32,address,uint256,uint256,uint256,uint256)"))
)

var uint256Ty = abi.Type{T: abi.UintTy, Size: 256}

var (
	orderFilledData = abi.Arguments{
		{Name: "makerAssetId", Type: uint256Ty},
		{Name: "takerAssetId", Type: uint256Ty},
		{Name: "makerAmountFilled", Type: uint256Ty},
		{Name: "takerAmountFilled", Type: uint256Ty},
		{Name: "fee", Type: uint256Ty},
	}
	ordersMatchedData = abi.Arguments{
		{Name: "makerAssetId", Type: uint256Ty},
		{Name: "takerAssetId", Type: uint256Ty},
		{Name: "makerAmountFilled", Type: uint256Ty},
		{Name: "takerAmountFilled", Type: uint256Ty},
	}
)

// OrderFilled is a decoded OrderFilled log.
type OrderFilled struct {
	OrderHash         common.Hash
	Maker             common.Address
	Taker             common.Address
	MakerAssetID      *big.Int
	TakerAssetID      *big.Int
	MakerAmountFilled *big.Int
	TakerAmountFilled *big.Int
	Fee               *big.Int
}

// OrdersMatched is a decoded OrdersMatched log.
type OrdersMatched struct {
	TakerOrderHash    common.Hash
	TakerOrderMaker   common.Address
	MakerAssetID      *big.Int
	TakerAssetID      *big.Int
	MakerAmountFilled *big.Int
	TakerAmountFilled *big.Int
}

// DecodeOrderFilled decodes lg as an OrderFilled event. It returns
// (nil, false) when the log does not match the event signature or its data
// cannot be unpacked; non-matches are the expected majority case and never
// an error.
func DecodeOrderFilled(lg chain.Log) (*OrderFilled, bool) {
	if len(lg.Topics) != 4 || lg.Topics[0] != OrderFilledTopic {
		return nil, false
	}

	vals, err := orderFilledData.UnpackValues(lg.Data)
	if err != nil || len(vals) != 5 {
		return nil, false
	}

	ev := &OrderFilled{
		OrderHash: lg.Topics[1],
		Maker:     common.BytesToAddress(lg.Topics[2].Bytes()),
		Taker:     common.BytesToAddress(lg.Topics[3].Bytes()),
	}
	var ok bool
	if ev.MakerAssetID, ok = vals[0].(*big.Int); !ok {
		return nil, false
	}
	if ev.TakerAssetID, ok = vals[1].(*big.Int); !ok {
		return nil, false
	}
	if ev.MakerAmountFilled, ok = vals[2].(*big.Int); !ok {
		return nil, false
	}
	if ev.TakerAmountFilled, ok = vals[3].(*big.Int); !ok {
		return nil, false
	}
	if ev.Fee, ok = vals[4].(*big.Int); !ok {
		return nil, false
	}
	return ev, true
}

// DecodeOrdersMatched decodes lg as an OrdersMatched event, with the same
// non-match semantics as DecodeOrderFilled.
func DecodeOrdersMatched(lg chain.Log) (*OrdersMatched, bool) {
	if len(lg.Topics) != 3 || lg.Topics[0] != OrdersMatchedTopic {
		return nil, false
	}

	vals, err := ordersMatchedData.UnpackValues(lg.Data)
	if err != nil || len(vals) != 4 {
		return nil, false
	}

	ev := &OrdersMatched{
		TakerOrderHash:  lg.Topics[1],
		TakerOrderMaker: common.BytesToAddress(lg.Topics[2].Bytes()),
	}
	var ok bool
	if ev.MakerAssetID, ok = vals[0].(*big.Int); !ok {
		return nil, false
	}
	if ev.TakerAssetID, ok = vals[1].(*big.Int); !ok {
		return nil, false
	}
	if ev.MakerAmountFilled, ok = vals[2].(*big.Int); !ok {
		return nil, false
	}
	if ev.TakerAmountFilled, ok = vals[3].(*big.Int); !ok {
		return nil, false
	}
	return ev, true
}
