package blogRepo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUniqueFilterWithObjectID(t *testing.T) {
	raw := "507f1f77bcf86cd799439011"
	oid, _ := primitive.ObjectIDFromHex(raw)

	got := uniqueFilter(raw)
	want := bson.M{"$or": bson.A{
		bson.M{"_id": oid},
		bson.M{"slug": raw},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("hex input should match on id or slug, got %v", got)
	}
}

func TestUniqueFilterWithSlug(t *testing.T) {
	got := uniqueFilter("spring-opening-hours")
	want := bson.M{"slug": "spring-opening-hours"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slug input should match on slug only, got %v", got)
	}
}

func TestFilterQuery(t *testing.T) {
	q := Filter{}.query()
	if len(q) != 0 {
		t.Errorf("empty filter should match everything, got %v", q)
	}

	q = Filter{Author: "jane", Tag: "wellness", PublishedOnly: true}.query()
	want := bson.M{"author": "jane", "tags": "wellness", "published": true}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("unexpected query: %v", q)
	}
}
