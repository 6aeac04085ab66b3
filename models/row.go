// Package models defines the relational row types produced by the extractor.
//
// Rows are flat value types: every field is either a plain string or a
// sql.NullString, so each type is comparable and can key a hash set. Two
// rows are the same row exactly when all fields match, which is the
// dedup contract for the bulk-load output.
//
// Schema conventions: rating and bid-count fields are carried as the raw
// source strings (no integer coercion), Bid columns are bidder-first, and
// Item has a single country column with no separate location.
package models

import "database/sql"

// User is one row of the users table.
// The same user id may appear in multiple rows when rating, location, or
// country differ across source records; no reconciliation is performed.
type User struct {
	UserID   string
	Rating   sql.NullString
	Location sql.NullString
	Country  sql.NullString
}

// Fields returns the columns in serialization order.
func (u User) Fields() []sql.NullString {
	return []sql.NullString{nonNull(u.UserID), u.Rating, u.Location, u.Country}
}

// Item is one row of the items table. Exactly one Item row is emitted per
// source record, even when the item id is absent.
type Item struct {
	ItemID       sql.NullString
	Name         sql.NullString
	Currently    sql.NullString
	FirstBid     sql.NullString
	NumberOfBids sql.NullString
	Country      sql.NullString
	Started      sql.NullString
	Ends         sql.NullString
	SellerID     sql.NullString
	Description  sql.NullString
}

// Fields returns the columns in serialization order.
func (i Item) Fields() []sql.NullString {
	return []sql.NullString{
		i.ItemID, i.Name, i.Currently, i.FirstBid, i.NumberOfBids,
		i.Country, i.Started, i.Ends, i.SellerID, i.Description,
	}
}

// Category is one row of the item_categories table.
type Category struct {
	ItemID sql.NullString
	Name   string
}

// Fields returns the columns in serialization order.
func (c Category) Fields() []sql.NullString {
	return []sql.NullString{c.ItemID, nonNull(c.Name)}
}

// Bid is one row of the bids table. A Bid row exists only when both the
// bidder user id and the item id were present in the source.
type Bid struct {
	BidderID string
	ItemID   string
	Time     sql.NullString
	Amount   sql.NullString
}

// Fields returns the columns in serialization order.
func (b Bid) Fields() []sql.NullString {
	return []sql.NullString{nonNull(b.BidderID), nonNull(b.ItemID), b.Time, b.Amount}
}

// Batch holds the rows extracted from one item record, and doubles as the
// snapshot shape for the merged accumulator state.
type Batch struct {
	Users      []User
	Items      []Item
	Categories []Category
	Bids       []Bid
}

func nonNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
