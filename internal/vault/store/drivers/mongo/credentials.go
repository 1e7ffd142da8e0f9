package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
)

type credentialsRepo struct {
	coll *mongo.Collection
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	_, err := r.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// liveFilter scopes a query to the non-deleted credentials of one owner.
// Soft-deleted documents and other users' documents are indistinguishable
// from absent ones through this filter.
func liveFilter(userID string) bson.M {
	return bson.M{"user_id": userID, "deleted": false}
}

func (r *credentialsRepo) GetCredential(ctx context.Context, userID, credentialID string) (domain.Credential, error) {
	filter := liveFilter(userID)
	filter["_id"] = credentialID

	var c domain.Credential
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) ListCredentials(ctx context.Context, userID, search string) ([]domain.Credential, error) {
	filter := liveFilter(userID)
	if search != "" {
		prefix := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": prefix},
			bson.M{"username": prefix},
		}
	}

	// ULID ids sort in creation order.
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	out := []domain.Credential{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *credentialsRepo) UpdateCredential(ctx context.Context, userID, credentialID string, patch domain.CredentialUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if patch.URL != nil {
		set["url"] = *patch.URL
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}

	filter := liveFilter(userID)
	filter["_id"] = credentialID

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialsRepo) SoftDeleteCredential(ctx context.Context, userID, credentialID string) error {
	filter := liveFilter(userID)
	filter["_id"] = credentialID

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialsRepo) SoftDeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(ctx, liveFilter(userID), bson.M{"$set": bson.M{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}})
	return err
}
