package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-accounts-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccountRepo keeps one document per account keyed by account id. A unique
// index on email enforces one account per address.
type AccountRepo struct {
	col *mongo.Collection
}

func NewAccountRepo(db *mongo.Database, collection string) *AccountRepo {
	return &AccountRepo{col: db.Collection(collection)}
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (r *AccountRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: domain.FieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": accountID})
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{domain.FieldEmail: email})
}

// ListNames returns the id and name of every account ordered by id.
func (r *AccountRepo) ListNames(ctx context.Context) ([]domain.AccountName, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, domain.FieldName: 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	names := []domain.AccountName{}
	if err := cur.All(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *AccountRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	set := bson.M{domain.FieldUpdatedAt: time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}
	res, err := r.col.UpdateByID(ctx, accountID, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, accountID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": accountID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepo) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var a domain.Account
	err := r.col.FindOne(ctx, filter).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
