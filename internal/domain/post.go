package domain

import (
	"time"

	"github.com/google/uuid"
)

// PostKind distinguishes the two composed variants.
type PostKind string

const (
	PostKindLongForm  PostKind = "linkedin"
	PostKindShortForm PostKind = "x"
)

// ComposedPost is the immutable output of one composer invocation.
type ComposedPost struct {
	Kind          PostKind          `json:"kind"`
	Content       string            `json:"content"`
	CharCount     int               `json:"char_count"`
	Hashtags      []string          `json:"hashtags"`
	ShortenedURLs map[string]string `json:"shortened_urls,omitempty"`
}

// PostRecord is the persisted shape of a composed post, including the
// out-of-band editor mutation path. The pipeline only ever creates records;
// editing belongs to the CRUD layer.
type PostRecord struct {
	ID              int64
	SessionID       uuid.UUID
	Kind            PostKind
	Content         string
	CharCount       int
	Edited          bool
	EditedContent   string
	EditedCharCount int
	ModelUsed       string
	WorkflowID      string
	ArticlesCount   int
	Topic           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
