package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const (
	collectionUsers    = "users"
	collectionCounters = "counters"

	usersSequence = "users"

	indexUsername = "users_username_unique"
	indexEmail    = "users_email_unique"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// userDocument is the stored shape of a user. _id is a numeric sequence taken
// from the counters collection.
type userDocument struct {
	ID           int64     `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Roles        []string  `bson:"roles"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type UserRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		col:      db.Collection(collectionUsers),
		counters: db.Collection(collectionCounters),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique indexes that back username and email uniqueness.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(indexUsername).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexEmail).SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	saved := user.Clone()
	saved.UpdatedAt = r.now()

	if saved.ID == 0 {
		id, err := r.nextID(ctx)
		if err != nil {
			return nil, err
		}
		saved.ID = id
		saved.CreatedAt = saved.UpdatedAt

		if _, err := r.col.InsertOne(ctx, toDocument(saved)); err != nil {
			if ce := duplicateKey(err); ce != nil {
				return nil, ce
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return saved, nil
	}

	update := bson.M{"$set": bson.M{
		"username":      saved.Username,
		"email":         saved.Email,
		"password_hash": saved.PasswordHash,
		"roles":         saved.Roles,
		"updated_at":    saved.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": saved.ID}, update)
	if err != nil {
		if ce := duplicateKey(err); ce != nil {
			return nil, ce
		}
		return nil, fmt.Errorf("update user %d: %w", saved.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return saved, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context, page ports.PageRequest) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(page)).
		SetSkip(page.Offset()).
		SetLimit(int64(page.Size))

	cursor, err := r.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i := range docs {
		users[i] = docs[i].toDomain()
	}
	return users, total, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// nextID atomically increments the users sequence.
func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": usersSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	return c.Seq, nil
}

// sortSpec maps an API sort field to its document key. _id breaks ties.
func sortSpec(page ports.PageRequest) bson.D {
	dir := 1
	if page.Descending {
		dir = -1
	}

	key := "_id"
	switch page.SortBy {
	case ports.SortByUsername:
		key = "username"
	case ports.SortByEmail:
		key = "email"
	case ports.SortByCreatedAt:
		key = "created_at"
	case ports.SortByUpdatedAt:
		key = "updated_at"
	}

	spec := bson.D{{Key: key, Value: dir}}
	if key != "_id" {
		spec = append(spec, bson.E{Key: "_id", Value: dir})
	}
	return spec
}

// duplicateKey maps an E11000 error to the conflict for the violated index.
func duplicateKey(err error) *domain.ConflictError {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), indexEmail) {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
