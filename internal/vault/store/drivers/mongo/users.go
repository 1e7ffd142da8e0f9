package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
)

type usersRepo struct {
	coll *mongo.Collection
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UserExists(ctx context.Context, id string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.DateOfBirth != nil {
		set["date_of_birth"] = *patch.DateOfBirth
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
