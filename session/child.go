package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// ChildResult is the single JSON line a worker child process prints to
// its stdout at termination, per spec.md §4.5's process-isolation
// contract: "the child's only return channel is a single JSON result
// object".
type ChildResult struct {
	RecordsFetched int      `json:"records_fetched"`
	Completed      bool     `json:"completed"`
	SkipFiles      []string `json:"skip_files"`
	Error          string   `json:"error,omitempty"`
}

// FromResult converts a Result into its wire form.
func FromResult(r Result, err error) ChildResult {
	cr := ChildResult{
		RecordsFetched: r.RecordsFetched,
		Completed:      r.Completed,
		SkipFiles:      r.SkipFiles.Names(),
	}
	if err != nil {
		cr.Error = err.Error()
	}
	return cr
}

// ToResult converts a ChildResult back into a Result plus an error if
// the child reported one.
func (c ChildResult) ToResult() (Result, error) {
	r := Result{
		RecordsFetched: c.RecordsFetched,
		Completed:      c.Completed,
		SkipFiles:      NewSkipFiles(c.SkipFiles...),
	}
	if c.Error != "" {
		return r, fmt.Errorf("child process reported error: %s", c.Error)
	}
	return r, nil
}

// ChildSpawner launches one worker-process chunk job and waits for its
// terminating result line, killing the child if it exceeds timeout.
// This realises the §5 "one child process per date chunk" process
// isolation option; a caller that does not need process isolation
// (e.g. a garbage-collected runtime with no leak to work around) can
// run RunHistorical in-process instead and never touch this type.
type ChildSpawner struct {
	// Command builds the child command for one chunk invocation; the
	// child is expected to print exactly one ChildResult JSON line to
	// stdout before exiting.
	Command func(ctx context.Context, args ChildArgs) *exec.Cmd
	Timeout time.Duration // default 300s, per spec.md §5
}

// ChildArgs is what the parent hands to one child: a single date
// chunk's worth of session parameters.
type ChildArgs struct {
	Feed      Feed
	DataSpec  string
	FromTime  string
	ToTime    string
	SkipFiles []string
}

// Spawn runs one child and returns its parsed result, or an error if
// the child timed out, exited non-zero, or never printed a valid
// result line.
func (s *ChildSpawner) Spawn(ctx context.Context, args ChildArgs) (Result, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := s.Command(runCtx, args)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("attach child stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start child: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var last ChildResult
	found := false
	for scanner.Scan() {
		var cr ChildResult
		if err := json.Unmarshal(scanner.Bytes(), &cr); err == nil {
			last = cr
			found = true
		}
	}

	waitErr := cmd.Wait()
	if runCtx.Err() != nil {
		return Result{}, fmt.Errorf("child timed out after %s: %w", timeout, runCtx.Err())
	}
	if waitErr != nil {
		return Result{}, fmt.Errorf("child exited with error: %w", waitErr)
	}
	if !found {
		return Result{}, fmt.Errorf("child did not print a result line")
	}
	return last.ToResult()
}
