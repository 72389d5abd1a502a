package database

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListOptions carries the common sort/pagination knobs repositories
// accept on FindMany. An unset sort leaves the store's natural order.
type ListOptions struct {
	SortField string
	SortAsc   bool
	Limit     int64
	Skip      int64
}

// Find converts the options into driver find options.
func (o ListOptions) Find() *options.FindOptions {
	fo := options.Find()
	if o.SortField != "" {
		dir := -1
		if o.SortAsc {
			dir = 1
		}
		fo.SetSort(bson.D{{Key: o.SortField, Value: dir}})
	}
	if o.Limit > 0 {
		fo.SetLimit(o.Limit)
	}
	if o.Skip > 0 {
		fo.SetSkip(o.Skip)
	}
	return fo
}
