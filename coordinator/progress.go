package coordinator

// Phase names the stage of a run a ProgressEvent was emitted from.
type Phase string

const (
	PhaseChunkStart  Phase = "chunk_start"
	PhaseBatchFlush  Phase = "batch_flush"
	PhaseChunkDone   Phase = "chunk_done"
	PhaseMonitorTick Phase = "monitor_tick"
	PhaseRunComplete Phase = "run_complete"
)

// ProgressEvent is one report emitted during ingestion (spec.md §3's
// ProgressEvent data model entry).
type ProgressEvent struct {
	Phase       Phase
	Fetched     int
	Parsed      int
	Imported    int
	Failed      int
	Batches     int
	CurrentFile string
	Retries     int
}
