package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// ContentType tags the kind of a content item.
type ContentType string

const (
	ContentText         ContentType = "text"
	ContentVideo        ContentType = "video"
	ContentConceptGraph ContentType = "concept_graph"
	ContentCode         ContentType = "code"
	ContentQuiz         ContentType = "quiz"
	ContentProject      ContentType = "project"
	ContentInteractive  ContentType = "interactive"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentVideo, ContentConceptGraph, ContentCode,
		ContentQuiz, ContentProject, ContentInteractive:
		return true
	}
	return false
}

// LearningPath is the root of the course hierarchy.
type LearningPath struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`

	// TotalEnrollments counts enrollment activations. Catalog imports
	// never change it.
	TotalEnrollments int `json:"total_enrollments"`
}

// Module is an ordered group of content items inside a path.
type Module struct {
	ID     string `json:"id"`
	PathID string `json:"path_id"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

// Slide is one titled section of a content item.
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Content is a single learning item. The engine never writes it.
type Content struct {
	ID               string      `json:"id"`
	ModuleID         string      `json:"module_id"`
	Title            string      `json:"title"`
	Type             ContentType `json:"type"`
	Order            int         `json:"order"`
	Body             string      `json:"body"`
	Slides           []Slide     `json:"slides"`
	Difficulty       string      `json:"difficulty"`
	EstimatedMinutes int         `json:"estimated_minutes"`
}

// Catalog is the import format for course content. Nested ids and orders
// are taken as given; passages seed the retrieval corpus.
type Catalog struct {
	Paths []CatalogPath `json:"paths"`
}

// CatalogPath is a learning path with its modules.
type CatalogPath struct {
	LearningPath
	Modules []CatalogModule `json:"modules"`
}

// CatalogModule is a module with its content items.
type CatalogModule struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Order    int              `json:"order"`
	Contents []CatalogContent `json:"contents"`
}

// CatalogContent is a content item plus its retrieval passages.
type CatalogContent struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Type             ContentType `json:"type"`
	Order            int         `json:"order"`
	Body             string      `json:"body"`
	Slides           []Slide     `json:"slides"`
	Difficulty       string      `json:"difficulty"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	Passages         []string    `json:"passages"`
}

// ContentRepo reads the course catalog.
type ContentRepo interface {
	// Path returns a learning path or ErrNotFound.
	Path(ctx context.Context, id string) (*LearningPath, error)

	// Module returns a module or ErrNotFound.
	Module(ctx context.Context, id string) (*Module, error)

	// Content returns a content item or ErrNotFound.
	Content(ctx context.Context, id string) (*Content, error)

	// ModuleIDs returns the module ids of a path in display order.
	ModuleIDs(ctx context.Context, pathID string) ([]string, error)

	// ContentIDs returns the content ids of a module in display order.
	ContentIDs(ctx context.Context, moduleID string) ([]string, error)

	// ListPaths returns every learning path ordered by title.
	ListPaths(ctx context.Context) ([]LearningPath, error)

	// Import upserts a catalog in one transaction and returns the number
	// of content items written.
	Import(ctx context.Context, c *Catalog) (int, error)
}

// Granularity is the level of the hierarchy a progress record tracks.
type Granularity string

const (
	GranularityPath    Granularity = "path"
	GranularityModule  Granularity = "module"
	GranularityContent Granularity = "content"
)

// Status is the lifecycle state of a progress record.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ProgressKey identifies one progress record. ModuleID is empty for path
// records; ContentID is empty for path and module records.
type ProgressKey struct {
	UserID    string
	PathID    string
	ModuleID  string
	ContentID string
}

// Granularity derives the record level from which ids are set.
func (k ProgressKey) Granularity() Granularity {
	switch {
	case k.ContentID != "":
		return GranularityContent
	case k.ModuleID != "":
		return GranularityModule
	default:
		return GranularityPath
	}
}

// Scope is the unique per-user key of the record.
func (k ProgressKey) Scope() string {
	s := "p:" + k.PathID
	if k.ModuleID != "" {
		s += "/m:" + k.ModuleID
	}
	if k.ContentID != "" {
		s += "/c:" + k.ContentID
	}
	return s
}

// Progress is one user's state at one level of the hierarchy.
type Progress struct {
	ID           string
	Key          ProgressKey
	Status       Status
	Percentage   float64
	TimeSpent    int // minutes
	Score        *float64
	Attempts     int
	StartedAt    time.Time
	CompletedAt  *time.Time
	LastAccessed time.Time
}

// Granularity returns the level of the record.
func (p *Progress) Granularity() Granularity {
	return p.Key.Granularity()
}

// ProgressRepo persists progress records. Every method that creates a
// record is safe under concurrent calls for the same key.
type ProgressRepo interface {
	// Get returns the record for key or ErrNotFound.
	Get(ctx context.Context, key ProgressKey) (*Progress, error)

	// GetOrCreate returns the record for key, creating it with
	// not_started defaults and started_at = now when absent.
	GetOrCreate(ctx context.Context, key ProgressKey, now time.Time) (*Progress, error)

	// Update get-or-creates the record and applies fn to it inside one
	// transaction. The record is written only when fn returns nil.
	Update(ctx context.Context, key ProgressKey, now time.Time, fn func(p *Progress) error) (*Progress, error)

	// CountCompletedContent counts the user's completed content records
	// among contentIDs.
	CountCompletedContent(ctx context.Context, userID string, contentIDs []string) (int, error)

	// CountCompletedModules counts the user's completed module records
	// among moduleIDs.
	CountCompletedModules(ctx context.Context, userID string, moduleIDs []string) (int, error)

	// List returns every record of the user under the path, path record
	// first, then modules, then content, each ordered by scope.
	List(ctx context.Context, userID, pathID string) ([]Progress, error)
}

// Enrollment is a user's subscription to a learning path.
type Enrollment struct {
	UserID     string
	PathID     string
	Active     bool
	EnrolledAt time.Time
}

// EnrollmentRepo manages enrollments.
type EnrollmentRepo interface {
	// Enroll activates the enrollment, creating it when absent. Creating
	// or reactivating an enrollment increments the path's
	// TotalEnrollments; enrolling while already active does not.
	Enroll(ctx context.Context, userID, pathID string, now time.Time) (*Enrollment, error)

	// Unenroll deactivates the enrollment. Missing enrollments return
	// ErrNotFound.
	Unenroll(ctx context.Context, userID, pathID string) error

	// Get returns the enrollment or ErrNotFound.
	Get(ctx context.Context, userID, pathID string) (*Enrollment, error)

	// List returns the user's enrollments, oldest first.
	List(ctx context.Context, userID string) ([]Enrollment, error)
}

// Passage is a unit of the retrieval corpus.
type Passage struct {
	ID        int64
	ContentID string
	Text      string
	Metadata  map[string]string
}

// PassageRepo stores retrieval passages.
type PassageRepo interface {
	// Add stores a passage and returns its id.
	Add(ctx context.Context, p Passage) (int64, error)

	// List returns the passages of a content item, or every passage when
	// contentID is empty.
	List(ctx context.Context, contentID string) ([]Passage, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsage aggregates calls by purpose or by model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Failures     int
}

// EventRepo provides append and query access to audit events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates events per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates events per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
