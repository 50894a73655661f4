package event

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the hierarchical event type (e.g. "verse.committed").
type Topic string

// Topics published by the editing core.
const (
	// TopicVerseCommitted fires after a cell commits to the autosave bridge.
	TopicVerseCommitted Topic = "verse.committed"

	// TopicAnalysisApplied fires when an analysis result is rendered.
	TopicAnalysisApplied Topic = "analysis.applied"

	// TopicSyncPerformed fires after a cross-pane verse sync completes.
	TopicSyncPerformed Topic = "sync.performed"

	// TopicBatchDropped fires after a collection batch is delivered.
	TopicBatchDropped Topic = "batch.dropped"

	// TopicPaneOpened fires when a pane is added to the registry.
	TopicPaneOpened Topic = "pane.opened"

	// TopicPaneClosed fires when a pane is removed from the registry.
	TopicPaneClosed Topic = "pane.closed"

	// TopicChapterLoaded fires when a pane replaces its cells with a newly
	// loaded chapter.
	TopicChapterLoaded Topic = "chapter.loaded"
)

// Event is one published occurrence. Events are immutable once created.
type Event struct {
	// Topic is the event type.
	Topic Topic

	// Payload contains the topic-specific data (one of the payload structs
	// in this package).
	Payload any

	// Metadata carries standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// New creates an event with generated metadata.
func New(topic Topic, payload any, source string) Event {
	return Event{
		Topic:   topic,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// VerseCommitted is the payload for TopicVerseCommitted.
type VerseCommitted struct {
	PaneID     string
	VerseIndex int
	Text       string
}

// AnalysisApplied is the payload for TopicAnalysisApplied.
type AnalysisApplied struct {
	PaneID      string
	VerseIndex  int
	Suggestions int
}

// SyncPerformed is the payload for TopicSyncPerformed.
type SyncPerformed struct {
	SourcePaneID string
	VerseIndex   int
	PanesMoved   int
}

// BatchDropped is the payload for TopicBatchDropped.
type BatchDropped struct {
	TargetPaneID string
	Items        int
	Matched      int
}

// PaneOpened is the payload for TopicPaneOpened.
type PaneOpened struct {
	PaneID string
	Role   string
}

// PaneClosed is the payload for TopicPaneClosed.
type PaneClosed struct {
	PaneID string
}

// ChapterLoaded is the payload for TopicChapterLoaded.
type ChapterLoaded struct {
	PaneID string
	Verses int
}
