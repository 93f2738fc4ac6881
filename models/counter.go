package models

// SequenceCounter stores the last value handed out for a named sequence.
type SequenceCounter struct {
	Name  string `bson:"_id" json:"name"`
	Value int64  `bson:"sequence_value" json:"sequence_value"`
}
