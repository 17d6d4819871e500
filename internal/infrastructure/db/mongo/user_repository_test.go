package mongo

import (
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

func TestSortSpec(t *testing.T) {
	tests := []struct {
		name string
		page ports.PageRequest
		want bson.D
	}{
		{"id asc", ports.PageRequest{SortBy: ports.SortByID}, bson.D{{Key: "_id", Value: 1}}},
		{"id desc", ports.PageRequest{SortBy: ports.SortByID, Descending: true}, bson.D{{Key: "_id", Value: -1}}},
		{"username", ports.PageRequest{SortBy: ports.SortByUsername}, bson.D{{Key: "username", Value: 1}, {Key: "_id", Value: 1}}},
		{"createdAt desc", ports.PageRequest{SortBy: ports.SortByCreatedAt, Descending: true}, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{"updatedAt", ports.PageRequest{SortBy: ports.SortByUpdatedAt}, bson.D{{Key: "updated_at", Value: 1}, {Key: "_id", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sortSpec(tt.page); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sortSpec() = %v, want %v", got, tt.want)
			}
		})
	}
}

func duplicateKeyException(index string) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: users.users index: " + index + " dup key: { }",
		}},
	}
}

func TestDuplicateKey(t *testing.T) {
	if ce := duplicateKey(duplicateKeyException(indexEmail)); ce != domain.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", ce)
	}
	if ce := duplicateKey(duplicateKeyException(indexUsername)); ce != domain.ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", ce)
	}
	if ce := duplicateKey(errors.New("network timeout")); ce != nil {
		t.Errorf("expected nil for non-duplicate error, got %v", ce)
	}
}
