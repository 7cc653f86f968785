// Package types defines the public domain types shared by the turnstone
// import pipeline and query layer.
package types

// EventSource identifies which save-file log an event was extracted from.
type EventSource string

// EventSource values. Memory events are the game's curated per-player
// recollections; log events are the exhaustive game log.
const (
	SourceMemory EventSource = "memory"
	SourceLog    EventSource = "log"
)

// ImportStage represents how far an archive made it through the pipeline.
type ImportStage string

// ImportStage values in pipeline order.
const (
	StageDiscovered ImportStage = "DISCOVERED"
	StageRead       ImportStage = "READ"
	StageExtracted  ImportStage = "EXTRACTED"
	StageLoaded     ImportStage = "LOADED"
)

// ImportStatus is the terminal outcome of one archive import attempt.
type ImportStatus string

// ImportStatus values.
const (
	ImportSucceeded ImportStatus = "SUCCEEDED"
	ImportFailed    ImportStatus = "FAILED"
	ImportSkipped   ImportStatus = "SKIPPED"
	ImportDryRun    ImportStatus = "DRY_RUN"
)
