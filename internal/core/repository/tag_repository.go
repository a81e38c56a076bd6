package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tagsense/internal/core/model"
)

// TagRepository stores the latest known record per tag. Implementations
// keep exactly one record per tag id; there is no sample history.
type TagRepository interface {
	Upsert(tag *model.Tag) error
	FindByTagID(tagID uint32) (*model.Tag, error)
	FindAll() ([]*model.Tag, error)
}

type MongoTagRepository struct {
	collection *mongo.Collection
}

func NewMongoTagRepository(db *mongo.Database) *MongoTagRepository {
	return &MongoTagRepository{
		collection: db.Collection("tags"),
	}
}

func (r *MongoTagRepository) Upsert(tag *model.Tag) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"tagid": tag.TagID}
	update := bson.M{
		"$set": bson.M{
			"battery":  tag.Battery,
			"mapid":    tag.MapID,
			"floor":    tag.Floor,
			"sleep":    tag.Sleep,
			"charging": tag.Charging,
			"lastseen": tag.LastSeen,
		},
		"$setOnInsert": bson.M{
			"_id":       tag.ID,
			"tagid":     tag.TagID,
			"firstseen": tag.FirstSeen,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoTagRepository) FindByTagID(tagID uint32) (*model.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var tag model.Tag
	err := r.collection.FindOne(ctx, bson.M{"tagid": tagID}).Decode(&tag)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *MongoTagRepository) FindAll() ([]*model.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"tagid": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []*model.Tag
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
