package repository

import (
	"SevaFlow/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NextSequence atomically increments and returns the named counter. The
// find-and-modify upsert makes concurrent callers serialize on the mongo
// document, so no two callers ever see the same value. Counters without a
// company id are global; their filter pins company_id to "absent" so a
// tenant counter can never shadow them.
func (m *MongoDB) NextSequence(kind, companyID string) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(countersCollection)

	filter := bson.M{"kind": kind}
	if companyID != "" {
		filter["company_id"] = companyID
	} else {
		filter["company_id"] = bson.M{"$exists": false}
	}

	update := bson.M{"$inc": bson.M{"value": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter entity.ReferenceCounter
	err = collection.FindOneAndUpdate(m.ctx, filter, update, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("mongodb counter error: %w", err)
	}
	return counter.Value, nil
}
