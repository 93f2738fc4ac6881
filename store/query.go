package store

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderMode selects how Find orders its results.
type OrderMode int

const (
	// OrderPriority sorts High, Medium, Low, then unset; newest first within a priority.
	OrderPriority OrderMode = iota
	// OrderNewest sorts newest first.
	OrderNewest
)

const priorityRankField = "priorityRank"

// IssueQuery is the parsed form of the issue list query string. Zero values mean "no constraint".
type IssueQuery struct {
	Status   []string
	Priority []string
	Category []string
	Search   string
	ID       *primitive.ObjectID
	Limit    int64
	Skip     int64
	Order    OrderMode
}

// ParseIssueQuery reads status, priority, category, search, _id, limit, skip and sort.
func ParseIssueQuery(values url.Values) (IssueQuery, error) {
	q := IssueQuery{
		Status:   splitList(values.Get("status")),
		Priority: splitList(values.Get("priority")),
		Category: splitList(values.Get("category")),
		Search:   strings.TrimSpace(values.Get("search")),
		Limit:    parseCount(values.Get("limit")),
		Skip:     parseCount(values.Get("skip")),
	}

	if raw := values.Get("_id"); raw != "" {
		id, err := ParseObjectID(raw)
		if err != nil {
			return IssueQuery{}, err
		}
		q.ID = &id
	}

	if values.Get("sort") == "newest" {
		q.Order = OrderNewest
	}

	return q, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseCount returns 0 (no constraint) for missing, malformed or negative input.
func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Filter builds the match document. Each set is an $in membership test, all of
// them ANDed, with search ORed across title, category and location.
func (q IssueQuery) Filter() bson.M {
	filter := bson.M{}

	if q.ID != nil {
		filter["_id"] = *q.ID
	}
	if len(q.Status) > 0 {
		filter["status"] = bson.M{"$in": q.Status}
	}
	if len(q.Priority) > 0 {
		filter["priority"] = bson.M{"$in": q.Priority}
	}
	if len(q.Category) > 0 {
		filter["category"] = bson.M{"$in": q.Category}
	}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"category": pattern},
			{"location": pattern},
		}
	}

	return filter
}

// Pipeline builds the aggregation: match, rank, sort, skip, limit. Skip and
// limit come after the sort so pages never cross the sort order.
func (q IssueQuery) Pipeline() mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: q.Filter()}},
	}

	if q.Order == OrderPriority {
		branches := make(bson.A, 0, len(models.PriorityRanks))
		for _, r := range models.PriorityRanks {
			branches = append(branches, bson.M{
				"case": bson.M{"$eq": bson.A{"$priority", string(r.Priority)}},
				"then": r.Rank,
			})
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.M{
				priorityRankField: bson.M{"$switch": bson.M{
					"branches": branches,
					"default":  models.UnrankedPriority,
				}},
			}}},
			bson.D{{Key: "$sort", Value: bson.D{
				{Key: priorityRankField, Value: 1},
				{Key: "_id", Value: -1},
			}}},
		)
	} else {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}})
	}

	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	if q.Order == OrderPriority {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{priorityRankField: 0}}})
	}

	return pipeline
}
