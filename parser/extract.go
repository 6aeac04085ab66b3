package parser

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"auction-etl/models"
)

// Extractor flattens item records into relational rows. It holds no
// shared output state; every Extract call returns a fresh batch. The one
// internal structure is an LRU memo for timestamp normalization, since
// bid times repeat heavily across a dataset.
type Extractor struct {
	dttm *lru.Cache[string, string]
}

// NewExtractor builds an extractor with a timestamp memo of the given
// capacity.
func NewExtractor(cacheSize int) (*Extractor, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("timestamp cache: %w", err)
	}
	return &Extractor{dttm: cache}, nil
}

// Extract produces the rows for one item record.
//
// Exactly one Item row is always emitted, even with a missing item id. A
// User row is emitted for the seller (location and country attributed
// from the item level) and for each bidder (own location and country),
// whenever the respective user id is present. A Bid row is emitted only
// when both bidder user id and item id are present; other bids are
// silently dropped. An empty id counts as absent for these gates.
// Malformed timestamps abort the extraction.
func (e *Extractor) Extract(rec *ItemRecord) (*models.Batch, error) {
	batch := &models.Batch{}

	itemID := nullable(rec.ItemID)

	var sellerID sql.NullString
	if rec.Seller != nil {
		sellerID = nullable(rec.Seller.UserID)
		if present(sellerID) {
			batch.Users = append(batch.Users, models.User{
				UserID:   sellerID.String,
				Rating:   nullable(rec.Seller.Rating),
				Location: nullable(rec.Location),
				Country:  nullable(rec.Country),
			})
		}
	}

	started, err := e.normalizeTime(rec.Started)
	if err != nil {
		return nil, fmt.Errorf("item %s started: %w", itemID.String, err)
	}
	ends, err := e.normalizeTime(rec.Ends)
	if err != nil {
		return nil, fmt.Errorf("item %s ends: %w", itemID.String, err)
	}

	batch.Items = append(batch.Items, models.Item{
		ItemID:       itemID,
		Name:         nullable(rec.Name),
		Currently:    normalizeNullCurrency(rec.Currently),
		FirstBid:     normalizeNullCurrency(rec.FirstBid),
		NumberOfBids: nullable(rec.NumberOfBids),
		Country:      nullable(rec.Country),
		Started:      started,
		Ends:         ends,
		SellerID:     sellerID,
		Description:  nullable(rec.Description),
	})

	for _, cat := range rec.Category {
		batch.Categories = append(batch.Categories, models.Category{
			ItemID: itemID,
			Name:   cat,
		})
	}

	for _, entry := range rec.Bids {
		if entry.Bid == nil {
			continue
		}
		bid := entry.Bid

		var bidderID sql.NullString
		if bid.Bidder != nil {
			bidderID = nullable(bid.Bidder.UserID)
			if present(bidderID) {
				batch.Users = append(batch.Users, models.User{
					UserID:   bidderID.String,
					Rating:   nullable(bid.Bidder.Rating),
					Location: nullable(bid.Bidder.Location),
					Country:  nullable(bid.Bidder.Country),
				})
			}
		}

		bidTime, err := e.normalizeTime(bid.Time)
		if err != nil {
			return nil, fmt.Errorf("item %s bid: %w", itemID.String, err)
		}

		if present(bidderID) && present(itemID) {
			batch.Bids = append(batch.Bids, models.Bid{
				BidderID: bidderID.String,
				ItemID:   itemID.String,
				Time:     bidTime,
				Amount:   normalizeNullCurrency(bid.Amount),
			})
		}
	}

	return batch, nil
}

// normalizeTime runs the timestamp normalizer through the memo. An
// absent timestamp is the same contract violation as a malformed one.
func (e *Extractor) normalizeTime(dttm *string) (sql.NullString, error) {
	if dttm == nil {
		return sql.NullString{}, fmt.Errorf("%w: missing value", ErrMalformedTimestamp)
	}
	if cached, ok := e.dttm.Get(*dttm); ok {
		return sql.NullString{String: cached, Valid: true}, nil
	}
	normalized, err := NormalizeTimestamp(*dttm)
	if err != nil {
		return sql.NullString{}, err
	}
	e.dttm.Add(*dttm, normalized)
	return sql.NullString{String: normalized, Valid: true}, nil
}

func normalizeNullCurrency(money *string) sql.NullString {
	if money == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: NormalizeCurrency(*money), Valid: true}
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// present reports whether an id gates row emission: an empty string is
// the same as an absent value. Non-gating fields still carry empty
// strings through unchanged.
func present(id sql.NullString) bool {
	return id.Valid && id.String != ""
}
