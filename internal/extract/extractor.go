// Package extract turns decoded blocks into ordered batches of exchange
// trade events. One extractor instance handles one (contract, event kind)
// pair; extractors are pure over the block and safe to run concurrently.
package extract

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/chain/exchange"
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/numeric"
)

// FillDecoder decodes a log as an OrderFilled event, reporting false on any
// non-match.
type FillDecoder func(chain.Log) (*exchange.OrderFilled, bool)

// MatchDecoder decodes a log as an OrdersMatched event, reporting false on
// any non-match.
type MatchDecoder func(chain.Log) (*exchange.OrdersMatched, bool)

func encodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// OrderFilledExtractor extracts OrderFilled events emitted by one contract.
type OrderFilledExtractor struct {
	contract common.Address
	decode   FillDecoder
}

// NewOrderFilledExtractor creates an extractor bound to the given contract
// address and decoder.
func NewOrderFilledExtractor(contract common.Address, decode FillDecoder) *OrderFilledExtractor {
	return &OrderFilledExtractor{contract: contract, decode: decode}
}

// Extract walks every log of every transaction in canonical order and emits
// one event per matching log. Each event's Ordinal is the log's in-block
// ordinal, so batches from different contracts merge into a single total
// order. A block without a timestamp is a malformed input and fails the
// block.
func (e *OrderFilledExtractor) Extract(blk *chain.Block) (domain.OrderFilledBatch, error) {
	if blk.Timestamp.IsZero() {
		return domain.OrderFilledBatch{}, fmt.Errorf("extract: block %d: %w", blk.Number, domain.ErrMissingTimestamp)
	}

	ts := blk.UnixSeconds()
	batch := domain.OrderFilledBatch{
		BlockNumber: blk.Number,
		BlockHash:   encodeHex(blk.Hash.Bytes()),
		Timestamp:   ts,
	}

	for _, trx := range blk.Transactions {
		for _, lg := range trx.Logs {
			if lg.Address != e.contract {
				continue
			}
			ev, ok := e.decode(lg)
			if !ok {
				continue
			}

			txHash := encodeHex(trx.Hash.Bytes())
			orderHash := encodeHex(ev.OrderHash.Bytes())
			makerAssetID := ev.MakerAssetID.String()
			takerAssetID := ev.TakerAssetID.String()
			makerAmount := ev.MakerAmountFilled.String()
			takerAmount := ev.TakerAmountFilled.String()

			batch.Events = append(batch.Events, domain.OrderFilledEvent{
				ID:                domain.FillID(txHash, orderHash),
				TransactionHash:   txHash,
				Timestamp:         ts,
				OrderHash:         orderHash,
				Maker:             encodeHex(ev.Maker.Bytes()),
				Taker:             encodeHex(ev.Taker.Bytes()),
				MakerAssetID:      makerAssetID,
				TakerAssetID:      takerAssetID,
				MakerAmountFilled: makerAmount,
				TakerAmountFilled: takerAmount,
				Fee:               ev.Fee.String(),
				BlockNumber:       blk.Number,
				Side:              numeric.DetermineTradeSide(makerAssetID, takerAssetID),
				Price:             numeric.CalculatePrice(makerAmount, takerAmount).String(),
				Ordinal:           lg.Ordinal,
			})
		}
	}

	return batch, nil
}

// OrdersMatchedExtractor extracts OrdersMatched events emitted by one
// contract.
type OrdersMatchedExtractor struct {
	contract common.Address
	decode   MatchDecoder
}

// NewOrdersMatchedExtractor creates an extractor bound to the given contract
// address and decoder.
func NewOrdersMatchedExtractor(contract common.Address, decode MatchDecoder) *OrdersMatchedExtractor {
	return &OrdersMatchedExtractor{contract: contract, decode: decode}
}

// Extract behaves like OrderFilledExtractor.Extract for OrdersMatched logs.
func (e *OrdersMatchedExtractor) Extract(blk *chain.Block) (domain.OrdersMatchedBatch, error) {
	if blk.Timestamp.IsZero() {
		return domain.OrdersMatchedBatch{}, fmt.Errorf("extract: block %d: %w", blk.Number, domain.ErrMissingTimestamp)
	}

	ts := blk.UnixSeconds()
	batch := domain.OrdersMatchedBatch{
		BlockNumber: blk.Number,
		BlockHash:   encodeHex(blk.Hash.Bytes()),
		Timestamp:   ts,
	}

	for _, trx := range blk.Transactions {
		for _, lg := range trx.Logs {
			if lg.Address != e.contract {
				continue
			}
			ev, ok := e.decode(lg)
			if !ok {
				continue
			}

			txHash := encodeHex(trx.Hash.Bytes())
			batch.Events = append(batch.Events, domain.OrdersMatchedEvent{
				ID:                domain.MatchID(txHash, lg.Ordinal),
				Timestamp:         ts,
				MakerAssetID:      ev.MakerAssetID.String(),
				TakerAssetID:      ev.TakerAssetID.String(),
				MakerAmountFilled: ev.MakerAmountFilled.String(),
				TakerAmountFilled: ev.TakerAmountFilled.String(),
				BlockNumber:       blk.Number,
				Ordinal:           lg.Ordinal,
			})
		}
	}

	return batch, nil
}
