package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fintrackeasy/user-service/internal/apperror"
	"github.com/fintrackeasy/user-service/internal/model"
)

// UserRepo persists user documents in a single mongo collection. Soft-deleted
// documents are invisible to every lookup.
type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(col *mongo.Collection) *UserRepo {
	return &UserRepo{col: col}
}

// EnsureIndexes creates the unique email index. The partial filter keeps the
// uniqueness constraint scoped to non-deleted documents so a soft-deleted
// account frees its address.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("email_unique_idx").
			SetPartialFilterExpression(bson.M{"deleted": false}),
	}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *UserRepo) Insert(ctx context.Context, u *model.User) (string, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperror.ErrAlreadyRegistered
		}
		return "", err
	}
	return u.ID.Hex(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "deleted": false})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateFields applies a partial $set as one atomic document write and returns
// the updated document.
func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "deleted": false}, update, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ConsumeVerificationToken flips the account to verified and clears the token
// in one conditional write. The filter includes the presented token, so a
// token reissued after the caller read the document matches nothing and the
// write reports ErrNotFound instead of consuming the stale link.
func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, id, token string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	filter := bson.M{
		"_id":                oid,
		"deleted":            false,
		"verified":           false,
		"verification_token": token,
	}
	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verification_token": "", "verification_token_expires": ""},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.ErrNotFound
	}
	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"deleted": false}, &options.FindOptions{
		Sort: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
