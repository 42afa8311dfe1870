package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interview-scheduler/internal/domain"
)

// slotDocument Mongo 文档；_id 为库内主键，对外只用 id
type slotDocument struct {
	MongoID       primitive.ObjectID `bson:"_id,omitempty"`
	ID            string             `bson:"id"`
	HRID          string             `bson:"hr_id"`
	StartTime     time.Time          `bson:"start_time"`
	EndTime       time.Time          `bson:"end_time"`
	CandidateName *string            `bson:"candidate_name"`
	InterviewType *string            `bson:"interview_type"`
}

func (d slotDocument) toDomain() domain.TimeSlot {
	return domain.TimeSlot{
		ID:            d.ID,
		HRID:          d.HRID,
		StartTime:     d.StartTime.UTC(),
		EndTime:       d.EndTime.UTC(),
		CandidateName: d.CandidateName,
		InterviewType: d.InterviewType,
	}
}

type TimeSlotMongoRepo struct{ coll *mongo.Collection }

func NewTimeSlotMongoRepo(coll *mongo.Collection) *TimeSlotMongoRepo {
	return &TimeSlotMongoRepo{coll: coll}
}

// EnsureIndexes creates the unique id index and the owner/start index used by list and overlap queries.
func (r *TimeSlotMongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_id"),
		},
		{
			Keys:    bson.D{{Key: "hr_id", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("owner_start"),
		},
	})
	return err
}

func (r *TimeSlotMongoRepo) List(ctx context.Context, hrID string) ([]domain.TimeSlot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"hr_id": hrID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.TimeSlot, 0)
	for cur.Next(ctx) {
		var d slotDocument
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode time slot: %w", err)
		}
		out = append(out, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TimeSlotMongoRepo) FindByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"id": id}))
}

func (r *TimeSlotMongoRepo) FindOverlap(ctx context.Context, hrID string, start, end time.Time, excludeID string) (*domain.TimeSlot, error) {
	filter := bson.M{
		"hr_id":      hrID,
		"start_time": bson.M{"$lt": end.UTC()},
		"end_time":   bson.M{"$gt": start.UTC()},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	s, err := r.decodeOne(r.coll.FindOne(ctx, filter))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return s, err
}

func (r *TimeSlotMongoRepo) Insert(ctx context.Context, s *domain.TimeSlot) error {
	doc := slotDocument{
		ID:            s.ID,
		HRID:          s.HRID,
		StartTime:     s.StartTime.UTC(),
		EndTime:       s.EndTime.UTC(),
		CandidateName: s.CandidateName,
		InterviewType: s.InterviewType,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *TimeSlotMongoRepo) FindAndUpdate(ctx context.Context, id string, p domain.SlotPatch) (*domain.TimeSlot, error) {
	set := bson.M{
		"start_time": p.StartTime.UTC(),
		"end_time":   p.EndTime.UTC(),
	}
	if p.CandidateName.Set {
		set["candidate_name"] = domain.NullIfEmpty(p.CandidateName.Value)
	}
	if p.InterviewType.Set {
		set["interview_type"] = domain.NullIfEmpty(p.InterviewType.Value)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts))
}

func (r *TimeSlotMongoRepo) FindAndDelete(ctx context.Context, id string) (*domain.TimeSlot, error) {
	return r.decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"id": id}))
}

func (r *TimeSlotMongoRepo) decodeOne(res *mongo.SingleResult) (*domain.TimeSlot, error) {
	var d slotDocument
	if err := res.Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s := d.toDomain()
	return &s, nil
}
