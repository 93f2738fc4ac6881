//go:build integration

package store_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"cityfixer-be/config"
	"cityfixer-be/models"
	"cityfixer-be/store"
	"cityfixer-be/tracking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var mongoURI string

func TestMain(m *testing.M) {
	ctx := context.Background()

	ctr, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongodb container unavailable: %v\n", err)
		os.Exit(1)
	}
	mongoURI, err = ctr.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongodb connection string: %v\n", err)
		_ = testcontainers.TerminateContainer(ctr)
		os.Exit(1)
	}

	code := m.Run()
	_ = testcontainers.TerminateContainer(ctr)
	os.Exit(code)
}

// testDB returns a fresh, indexed database on the shared container.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()

	name := "cf_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	client, db, err := config.ConnectDB(mongoURI, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	require.NoError(t, models.EnsureIndexes(db))
	return db
}

func TestMongoAllocatorConcurrent(t *testing.T) {
	db := testDB(t)
	alloc := tracking.NewAllocator(store.NewMongoCounters(db)).WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	})

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.Allocate(context.Background())
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	require.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("CF-2024-%05d", i)], "missing sequence %d", i)
	}
}

func TestMongoUpvote(t *testing.T) {
	db := testDB(t)
	issues := store.NewMongoIssues(db)
	ctx := context.Background()

	res, err := issues.Create(ctx, &models.Issue{TrackingID: "CF-2024-00001", Title: "Pothole", Status: models.Pending})
	require.NoError(t, err)

	require.NoError(t, issues.Upvote(ctx, res.InsertedID, "a@x.com"))
	assert.ErrorIs(t, issues.Upvote(ctx, res.InsertedID, "a@x.com"), store.ErrAlreadyUpvoted)
	assert.ErrorIs(t, issues.Upvote(ctx, primitive.NewObjectID(), "a@x.com"), store.ErrAlreadyUpvoted)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for r := 0; r < 2; r++ {
			wg.Add(1)
			go func(voter int) {
				defer wg.Done()
				_ = issues.Upvote(ctx, res.InsertedID, fmt.Sprintf("v%d@x.com", voter))
			}(i)
		}
	}
	wg.Wait()

	got, err := issues.Get(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), got.Upvotes)
	assert.Len(t, got.UpvotedBy, 21)
}

func TestMongoUpvoteNullVoterList(t *testing.T) {
	db := testDB(t)
	issues := store.NewMongoIssues(db)
	ctx := context.Background()

	id := primitive.NewObjectID()
	_, err := db.Collection(models.IssuesCollection).InsertOne(ctx, bson.M{
		"_id":        id,
		"trackingId": "CF-2024-00001",
		"title":      "imported",
		"status":     "Pending",
		"upvotedBy":  nil,
	})
	require.NoError(t, err)

	require.NoError(t, issues.Upvote(ctx, id, "$a@x.com"))
	assert.ErrorIs(t, issues.Upvote(ctx, id, "$a@x.com"), store.ErrAlreadyUpvoted)

	got, err := issues.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, []string{"$a@x.com"}, got.UpvotedBy)
}

func TestMongoFindPriorityOrder(t *testing.T) {
	db := testDB(t)
	issues := store.NewMongoIssues(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []struct {
		title    string
		priority models.IssuePriority
	}{
		{"low-old", models.Low},
		{"none", ""},
		{"high-old", models.High},
		{"medium", models.Medium},
		{"high-new", models.High},
		{"low-new", models.Low},
	}
	for i, s := range seed {
		_, err := issues.Create(ctx, &models.Issue{
			ID:         primitive.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Minute)),
			TrackingID: fmt.Sprintf("CF-2024-%05d", i+1),
			Title:      s.title,
			Status:     models.Pending,
			Priority:   s.priority,
		})
		require.NoError(t, err)
	}

	titles := func(q store.IssueQuery) []string {
		found, err := issues.Find(ctx, q)
		require.NoError(t, err)
		out := make([]string, 0, len(found))
		for _, issue := range found {
			out = append(out, issue.Title)
		}
		return out
	}

	assert.Equal(t,
		[]string{"high-new", "high-old", "medium", "low-new", "low-old", "none"},
		titles(store.IssueQuery{}))
	assert.Equal(t,
		[]string{"medium", "low-new"},
		titles(store.IssueQuery{Skip: 2, Limit: 2}))
	assert.Equal(t,
		[]string{"low-new", "high-new", "medium", "high-old", "none", "low-old"},
		titles(store.IssueQuery{Order: store.OrderNewest}))
	assert.Equal(t,
		[]string{"high-new", "high-old"},
		titles(store.IssueQuery{Search: "HIGH"}))

	raw, err := db.Collection(models.IssuesCollection).CountDocuments(ctx, bson.M{"priorityRank": bson.M{"$exists": true}})
	require.NoError(t, err)
	assert.Zero(t, raw, "rank is computed per query, never stored")
}

func TestMongoUniqueTrackingID(t *testing.T) {
	db := testDB(t)
	issues := store.NewMongoIssues(db)
	ctx := context.Background()

	_, err := issues.Create(ctx, &models.Issue{TrackingID: "CF-2024-00001", Title: "a"})
	require.NoError(t, err)

	_, err = issues.Create(ctx, &models.Issue{TrackingID: "CF-2024-00001", Title: "b"})
	assert.True(t, mongo.IsDuplicateKeyError(err))
}

func TestMongoUpdateResolvedAndPayments(t *testing.T) {
	db := testDB(t)
	issues := store.NewMongoIssues(db)
	payments := store.NewMongoPayments(db)
	ctx := context.Background()

	res, err := issues.Create(ctx, &models.Issue{TrackingID: "CF-2024-00001", Title: "Lamp", Status: models.Pending})
	require.NoError(t, err)

	status := models.Resolved
	upd, err := issues.Update(ctx, res.InsertedID, models.IssueUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, store.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, upd)

	upd, err = issues.Update(ctx, primitive.NewObjectID(), models.IssueUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, store.UpdateResult{Acknowledged: true}, upd)

	resolved, err := issues.Resolved(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.NotNil(t, resolved[0].UpdatedAt)
	assert.Equal(t, "CF-2024-00001", resolved[0].TrackingID)

	for _, tx := range []string{"tx_1", "tx_2"} {
		_, err := payments.Create(ctx, &models.Payment{IssueID: res.InsertedID, TransactionID: tx, Amount: 10000})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	list, err := payments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tx_2", list[0].TransactionID)

	del, err := issues.Delete(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)
}
