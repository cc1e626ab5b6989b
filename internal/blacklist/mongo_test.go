package blacklist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStoreEntries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes entries", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "backcheck.blacklist_entries", mtest.FirstBatch,
			bson.D{{Key: "division", Value: "north"}, {Key: "kind", Value: "group"}, {Key: "target_id", Value: int64(100)}, {Key: "name", Value: "Raiders"}},
			bson.D{{Key: "kind", Value: "user"}, {Key: "target_id", Value: int64(7)}},
		))

		entries, err := NewMongoStore(mt.Coll).Entries(context.Background())
		require.NoError(mt, err)
		require.Len(mt, entries, 2)
		assert.Equal(mt, Entry{Division: "north", Kind: KindGroup, TargetID: 100, Name: "Raiders"}, entries[0])
		assert.Equal(mt, KindUser, entries[1].Kind)
	})

	mt.Run("propagates command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, err := NewMongoStore(mt.Coll).Entries(context.Background())
		require.Error(mt, err)
	})
}
