package parser

import (
	"database/sql"
	"errors"
	"testing"

	"auction-etl/models"
)

func strPtr(s string) *string {
	return &s
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func sampleRecord() *ItemRecord {
	return &ItemRecord{
		ItemID:       strPtr("123"),
		Name:         strPtr("First edition"),
		Category:     []string{"Books"},
		Currently:    strPtr("$5.00"),
		FirstBid:     strPtr("$1.00"),
		NumberOfBids: strPtr("2"),
		Location:     strPtr("USA"),
		Country:      strPtr("USA"),
		Started:      strPtr("Jan-01-99 00:00:00"),
		Ends:         strPtr("Jan-08-99 00:00:00"),
		Seller:       &SellerRecord{UserID: strPtr("sellerA"), Rating: strPtr("50")},
		Description:  strPtr("A very old book"),
		Bids: []BidEntry{
			{
				Bid: &BidRecord{
					Bidder: &BidderRecord{UserID: strPtr("buyerB"), Country: strPtr("UK")},
					Time:   strPtr("Jan-02-99 12:00:00"),
					Amount: strPtr("$2.00"),
				},
			},
		},
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(64)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	return e
}

func TestExtractFullRecord(t *testing.T) {
	e := newTestExtractor(t)

	batch, err := e.Extract(sampleRecord())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	wantUsers := []models.User{
		{UserID: "sellerA", Rating: nullStr("50"), Location: nullStr("USA"), Country: nullStr("USA")},
		{UserID: "buyerB", Country: nullStr("UK")},
	}
	if len(batch.Users) != len(wantUsers) {
		t.Fatalf("users = %d, want %d", len(batch.Users), len(wantUsers))
	}
	for i, want := range wantUsers {
		if batch.Users[i] != want {
			t.Errorf("user[%d] = %+v, want %+v", i, batch.Users[i], want)
		}
	}

	wantItem := models.Item{
		ItemID:       nullStr("123"),
		Name:         nullStr("First edition"),
		Currently:    nullStr("5.00"),
		FirstBid:     nullStr("1.00"),
		NumberOfBids: nullStr("2"),
		Country:      nullStr("USA"),
		Started:      nullStr("2099-01-01 00:00:00"),
		Ends:         nullStr("2099-01-08 00:00:00"),
		SellerID:     nullStr("sellerA"),
		Description:  nullStr("A very old book"),
	}
	if len(batch.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(batch.Items))
	}
	if batch.Items[0] != wantItem {
		t.Errorf("item = %+v, want %+v", batch.Items[0], wantItem)
	}

	if len(batch.Categories) != 1 {
		t.Fatalf("categories = %d, want 1", len(batch.Categories))
	}
	wantCategory := models.Category{ItemID: nullStr("123"), Name: "Books"}
	if batch.Categories[0] != wantCategory {
		t.Errorf("category = %+v, want %+v", batch.Categories[0], wantCategory)
	}

	if len(batch.Bids) != 1 {
		t.Fatalf("bids = %d, want 1", len(batch.Bids))
	}
	wantBid := models.Bid{
		BidderID: "buyerB",
		ItemID:   "123",
		Time:     nullStr("2099-01-02 12:00:00"),
		Amount:   nullStr("2.00"),
	}
	if batch.Bids[0] != wantBid {
		t.Errorf("bid = %+v, want %+v", batch.Bids[0], wantBid)
	}
}

func TestExtractSellerLocationFromItemLevel(t *testing.T) {
	e := newTestExtractor(t)

	rec := sampleRecord()
	rec.Location = strPtr("Palo Alto, CA")
	rec.Country = strPtr("USA")

	batch, err := e.Extract(rec)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	seller := batch.Users[0]
	if seller.Location != nullStr("Palo Alto, CA") || seller.Country != nullStr("USA") {
		t.Errorf("seller location/country = %+v, want item-level values", seller)
	}

	// The bidder keeps its own location and country, absent here.
	bidder := batch.Users[1]
	if bidder.Location.Valid {
		t.Errorf("bidder location = %+v, want null", bidder.Location)
	}
	if bidder.Country != nullStr("UK") {
		t.Errorf("bidder country = %+v, want UK", bidder.Country)
	}
}

func TestExtractMissingSellerID(t *testing.T) {
	e := newTestExtractor(t)

	rec := sampleRecord()
	rec.Seller = &SellerRecord{Rating: strPtr("50")}
	rec.Bids = nil

	batch, err := e.Extract(rec)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(batch.Users) != 0 {
		t.Errorf("users = %d, want 0", len(batch.Users))
	}
	if len(batch.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(batch.Items))
	}
	if batch.Items[0].SellerID.Valid {
		t.Errorf("seller id = %+v, want null", batch.Items[0].SellerID)
	}
}

func TestExtractMissingItemID(t *testing.T) {
	e := newTestExtractor(t)

	rec := sampleRecord()
	rec.ItemID = nil

	batch, err := e.Extract(rec)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	// The item row is still emitted with a null id.
	if len(batch.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(batch.Items))
	}
	if batch.Items[0].ItemID.Valid {
		t.Errorf("item id = %+v, want null", batch.Items[0].ItemID)
	}

	// The bidder user row survives but the bid itself is dropped.
	if len(batch.Users) != 2 {
		t.Errorf("users = %d, want 2", len(batch.Users))
	}
	if len(batch.Bids) != 0 {
		t.Errorf("bids = %d, want 0", len(batch.Bids))
	}
}

func TestExtractBidWithoutBidderIDDropped(t *testing.T) {
	e := newTestExtractor(t)

	rec := sampleRecord()
	rec.Bids = []BidEntry{
		{
			Bid: &BidRecord{
				Bidder: &BidderRecord{Country: strPtr("UK")},
				Time:   strPtr("Jan-02-99 12:00:00"),
				Amount: strPtr("$2.00"),
			},
		},
	}

	batch, err := e.Extract(rec)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	// No bid row and no bidder user row, only the seller.
	if len(batch.Bids) != 0 {
		t.Errorf("bids = %d, want 0", len(batch.Bids))
	}
	if len(batch.Users) != 1 || batch.Users[0].UserID != "sellerA" {
		t.Errorf("users = %+v, want only sellerA", batch.Users)
	}
}

func TestExtractEmptyIDsGateEmission(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("empty seller id", func(t *testing.T) {
		rec := sampleRecord()
		rec.Seller.UserID = strPtr("")
		rec.Bids = nil

		batch, err := e.Extract(rec)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if len(batch.Users) != 0 {
			t.Errorf("users = %+v, want none", batch.Users)
		}
		// The item row still carries the empty seller id field through.
		if batch.Items[0].SellerID != nullStr("") {
			t.Errorf("seller id = %+v, want empty string", batch.Items[0].SellerID)
		}
	})

	t.Run("empty bidder id", func(t *testing.T) {
		rec := sampleRecord()
		rec.Bids[0].Bid.Bidder.UserID = strPtr("")

		batch, err := e.Extract(rec)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if len(batch.Users) != 1 || batch.Users[0].UserID != "sellerA" {
			t.Errorf("users = %+v, want only sellerA", batch.Users)
		}
		if len(batch.Bids) != 0 {
			t.Errorf("bids = %+v, want none", batch.Bids)
		}
	})

	t.Run("empty item id", func(t *testing.T) {
		rec := sampleRecord()
		rec.ItemID = strPtr("")

		batch, err := e.Extract(rec)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if len(batch.Bids) != 0 {
			t.Errorf("bids = %+v, want none", batch.Bids)
		}
		// Bidder user row, item row, and category rows are unaffected.
		if len(batch.Users) != 2 {
			t.Errorf("users = %d, want 2", len(batch.Users))
		}
		if batch.Items[0].ItemID != nullStr("") {
			t.Errorf("item id = %+v, want empty string", batch.Items[0].ItemID)
		}
		if len(batch.Categories) != 1 || batch.Categories[0].ItemID != nullStr("") {
			t.Errorf("categories = %+v, want one with empty item id", batch.Categories)
		}
	})
}

func TestExtractEmptyCategoryList(t *testing.T) {
	e := newTestExtractor(t)

	rec := sampleRecord()
	rec.Category = nil

	batch, err := e.Extract(rec)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(batch.Categories) != 0 {
		t.Errorf("categories = %d, want 0", len(batch.Categories))
	}
}

func TestExtractMalformedTimestampFatal(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name   string
		mutate func(*ItemRecord)
	}{
		{
			name:   "malformed started",
			mutate: func(rec *ItemRecord) { rec.Started = strPtr("not a timestamp") },
		},
		{
			name:   "missing ends",
			mutate: func(rec *ItemRecord) { rec.Ends = nil },
		},
		{
			name: "malformed bid time",
			mutate: func(rec *ItemRecord) {
				rec.Bids[0].Bid.Time = strPtr("Dec-21")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			tt.mutate(rec)
			if _, err := e.Extract(rec); !errors.Is(err, ErrMalformedTimestamp) {
				t.Fatalf("extract error = %v, want ErrMalformedTimestamp", err)
			}
		})
	}
}

func TestExtractTimestampMemoization(t *testing.T) {
	e := newTestExtractor(t)

	first, err := e.Extract(sampleRecord())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	second, err := e.Extract(sampleRecord())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if first.Items[0] != second.Items[0] {
		t.Errorf("repeated extraction differs: %+v vs %+v", first.Items[0], second.Items[0])
	}
	if got, ok := e.dttm.Get("Jan-02-99 12:00:00"); !ok || got != "2099-01-02 12:00:00" {
		t.Errorf("cache entry = %q, %v; want memoized bid time", got, ok)
	}
}
