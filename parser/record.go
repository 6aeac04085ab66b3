package parser

// Document is the top-level shape of one auction JSON file.
type Document struct {
	Items []ItemRecord `json:"Items"`
}

// ItemRecord is one auction listing as it appears on the wire. Pointer
// fields distinguish absent keys and JSON nulls from empty strings.
type ItemRecord struct {
	ItemID       *string       `json:"ItemID"`
	Name         *string       `json:"Name"`
	Category     []string      `json:"Category"`
	Currently    *string       `json:"Currently"`
	BuyPrice     *string       `json:"Buy_Price"`
	FirstBid     *string       `json:"First_Bid"`
	NumberOfBids *string       `json:"Number_of_Bids"`
	Bids         []BidEntry    `json:"Bids"`
	Location     *string       `json:"Location"`
	Country      *string       `json:"Country"`
	Started      *string       `json:"Started"`
	Ends         *string       `json:"Ends"`
	Seller       *SellerRecord `json:"Seller"`
	Description  *string       `json:"Description"`
}

// SellerRecord is the nested seller sub-record. Sellers carry no location
// or country of their own; those are attributed from the enclosing item.
type SellerRecord struct {
	UserID *string `json:"UserID"`
	Rating *string `json:"Rating"`
}

// BidEntry is one element of the Bids array.
type BidEntry struct {
	Bid *BidRecord `json:"Bid"`
}

// BidRecord is the payload of one bid.
type BidRecord struct {
	Bidder *BidderRecord `json:"Bidder"`
	Time   *string       `json:"Time"`
	Amount *string       `json:"Amount"`
}

// BidderRecord is the nested bidder sub-record. Unlike sellers, bidders
// carry their own location and country.
type BidderRecord struct {
	UserID   *string `json:"UserID"`
	Rating   *string `json:"Rating"`
	Location *string `json:"Location"`
	Country  *string `json:"Country"`
}
