package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/raceingest/core/ingesterr"
)

// RecordHandler is invoked once per record the session yields. An
// error from the handler aborts the current session the way a fatal
// vendor error would.
type RecordHandler func(ctx context.Context, buf []byte, fileName string) error

// Config controls one Manager's timing and retry policy. Zero values
// are replaced with the defaults spec.md §4.5/§5 document.
type Config struct {
	ServiceKey string
	// LockDir holds the advisory lock file that enforces "one vendor
	// session at a time" across process boundaries (SPEC_FULL.md §4.5).
	LockDir string

	StatusPollInterval time.Duration // default 80ms, spec's ~12Hz
	StallTimeout       time.Duration // default 60s
	OpenTimeout        time.Duration // default 300s
	RateLimitBackoff   time.Duration // default 30s
	DownloadRetryWait  time.Duration // default 10s
	MaxSessionRetries  int           // default 5, spec's "M times"
	ReadBudget         int           // default 100000 read_record iterations

	Option       Option
	OptionPolicy OptionPolicy
}

func (c Config) withDefaults() Config {
	if c.StatusPollInterval == 0 {
		c.StatusPollInterval = 80 * time.Millisecond
	}
	if c.StallTimeout == 0 {
		c.StallTimeout = 60 * time.Second
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = 300 * time.Second
	}
	if c.RateLimitBackoff == 0 {
		c.RateLimitBackoff = 30 * time.Second
	}
	if c.DownloadRetryWait == 0 {
		c.DownloadRetryWait = 10 * time.Second
	}
	if c.MaxSessionRetries == 0 {
		c.MaxSessionRetries = 5
	}
	if c.ReadBudget == 0 {
		c.ReadBudget = 100000
	}
	if c.Option == 0 {
		c.Option = OptionSetup
	}
	if c.OptionPolicy == nil {
		c.OptionPolicy = DefaultOptionPolicy
	}
	return c
}

// Result is what one historical-backfill run over a single chunk
// returns, matching the child-process contract's result shape
// (SPEC_FULL.md §4.5 / spec.md §4.5 suspension section).
type Result struct {
	RecordsFetched int
	Completed      bool
	SkipFiles      SkipFiles
}

// Manager drives exactly one vendor session at a time. It owns a
// cross-process advisory lock for the duration of a run so two
// Manager instances (including a leftover process from a crashed run)
// can never hold a vendor session concurrently.
type Manager struct {
	vendor Vendor
	cfg    Config
	logger *zap.Logger

	state State
	lock  *flock.Flock
}

// NewManager builds a Manager over vendor. A nil logger is replaced
// with a no-op logger.
func NewManager(vendor Vendor, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	var lk *flock.Flock
	if cfg.LockDir != "" {
		lk = flock.New(filepath.Join(cfg.LockDir, "vendor-session.lock"))
	}
	return &Manager{vendor: vendor, cfg: cfg, logger: logger, state: Uninitialised, lock: lk}
}

// State reports the manager's current state-machine node.
func (m *Manager) State() State { return m.state }

func (m *Manager) acquire(ctx context.Context) (func(), error) {
	if m.lock == nil {
		return func() {}, nil
	}
	locked, err := m.lock.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "acquire vendor session lock")
	}
	if !locked {
		return nil, ingesterr.New(ingesterr.TagVendorTransport, 0, "another process holds the vendor session lock", fmt.Errorf("lock busy"))
	}
	return func() { m.lock.Unlock() }, nil
}

// RunHistorical drives one historical backfill chunk end to end:
// initialise, open, wait for download, read every record through
// handle, and close. It retries the whole open/download cycle on
// vendor-transport errors, carrying skipFiles forward across retries.
func (m *Manager) RunHistorical(ctx context.Context, feed Feed, dataSpec, fromTime string, skipFiles SkipFiles, handle RecordHandler) (Result, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	if skipFiles == nil {
		skipFiles = NewSkipFiles()
	} else {
		skipFiles = skipFiles.Clone()
	}

	if err := m.initialise(ctx); err != nil {
		return Result{}, err
	}
	defer m.vendor.Close(ctx)

	result := Result{SkipFiles: skipFiles}
	attempt := 0

	for {
		attempt++
		option := m.cfg.OptionPolicy(feed, m.cfg.Option)

		openCtx, cancel := context.WithTimeout(ctx, m.cfg.OpenTimeout)
		open, err := m.vendor.Open(openCtx, dataSpec, fromTime, int(option))
		cancel()
		if err != nil {
			return result, ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "open vendor session")
		}
		if open.Code.Fatal() {
			return result, ingesterr.New(ingesterr.TagAuth, int(open.Code), ingesterr.AuthRemedy(feed == Regional), fmt.Errorf("open failed"))
		}
		if open.Code != CodeOK {
			if open.Code.Retryable() && attempt < m.cfg.MaxSessionRetries {
				m.state = FailedRetryable
				if err := m.waitAndCloseForRetry(ctx, open.Code); err != nil {
					return result, err
				}
				continue
			}
			return result, ingesterr.New(ingesterr.TagVendorTransport, int(open.Code), "", fmt.Errorf("open failed after %d attempts", attempt))
		}

		m.state = Opening
		if open.DownloadCount == 0 {
			m.state = Reading
		} else {
			m.state = Downloading
			if err := m.waitForDownload(ctx); err != nil {
				if retryable, isRetryable := asRetryable(err); isRetryable && attempt < m.cfg.MaxSessionRetries {
					m.logger.Warn("download wait failed, retrying session", zap.Error(err), zap.Int("code", int(retryable)))
					if err := m.waitAndCloseForRetry(ctx, retryable); err != nil {
						return result, err
					}
					continue
				}
				return result, err
			}
			m.state = Reading
		}

		fetched, readErr := m.readLoop(ctx, skipFiles, handle)
		result.RecordsFetched += fetched

		if readErr != nil {
			if retryable, isRetryable := asRetryable(readErr); isRetryable && attempt < m.cfg.MaxSessionRetries {
				m.logger.Warn("read loop failed, retrying session", zap.Error(readErr))
				if err := m.waitAndCloseForRetry(ctx, retryable); err != nil {
					return result, err
				}
				continue
			}
			return result, readErr
		}

		m.state = Closed
		result.Completed = true
		return result, nil
	}
}

// RunLiveMonitor opens a real-time session (no from_time: the vendor
// returns only data new since the last call), drains it through
// handle, and closes. Unlike RunHistorical it does not retry the whole
// cycle on vendor-transport errors — the caller's polling loop simply
// tries again next cycle.
func (m *Manager) RunLiveMonitor(ctx context.Context, feed Feed, dataSpec, key string, handle RecordHandler) (Result, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	if err := m.initialise(ctx); err != nil {
		return Result{}, err
	}
	defer m.vendor.Close(ctx)

	open, err := m.vendor.RealTimeOpen(ctx, dataSpec, key)
	if err != nil {
		return Result{}, ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "open real-time session")
	}
	if open.Code.Fatal() {
		return Result{}, ingesterr.New(ingesterr.TagAuth, int(open.Code), ingesterr.AuthRemedy(feed == Regional), fmt.Errorf("real-time open failed"))
	}
	if open.Code != CodeOK {
		return Result{}, ingesterr.New(ingesterr.TagVendorTransport, int(open.Code), "", fmt.Errorf("real-time open failed"))
	}

	fetched, err := m.readLoop(ctx, NewSkipFiles(), handle)
	if err != nil {
		if code, ok := asRetryable(err); ok {
			return Result{RecordsFetched: fetched}, ingesterr.New(ingesterr.TagVendorTransport, int(code), "", err)
		}
		return Result{RecordsFetched: fetched}, err
	}
	return Result{RecordsFetched: fetched, Completed: true}, nil
}

func (m *Manager) initialise(ctx context.Context) error {
	code, err := m.vendor.Initialise(ctx, m.cfg.ServiceKey)
	if err != nil {
		return ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "initialise vendor session")
	}
	if code != CodeOK {
		return ingesterr.New(ingesterr.TagAuth, int(code), "verify the configured service key and re-run setup", fmt.Errorf("initialise failed"))
	}
	m.state = Initialised
	return nil
}

// retryableCode lets waitForDownload and readLoop surface which
// documented code triggered a retryable failure, via asRetryable.
type retryableCode struct {
	code ResultCode
	err  error
}

func (r *retryableCode) Error() string { return r.err.Error() }
func (r *retryableCode) Unwrap() error { return r.err }

func asRetryable(err error) (ResultCode, bool) {
	rc, ok := err.(*retryableCode)
	if !ok {
		return 0, false
	}
	return rc.code, true
}

// waitForDownload polls status at the configured cadence until the
// vendor reports completion, an error class, or a stall, following
// the ticker + ctx.Done() idiom used throughout this module's
// long-running wait loops.
func (m *Manager) waitForDownload(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.StatusPollInterval)
	defer ticker.Stop()

	lastProgress := time.Now()
	var lastCount ResultCode = -1

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			code, err := m.vendor.Status(ctx)
			if err != nil {
				return ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "poll vendor status")
			}
			switch {
			case code == CodeOK:
				return nil
			case code == CodeFileNotYetDelivered:
				// regional file not yet downloaded; keep polling.
			case code == CodeRateLimit:
				time.Sleep(m.cfg.RateLimitBackoff)
				lastProgress = time.Now()
			case code.Retryable():
				return &retryableCode{code: code, err: fmt.Errorf("status returned retryable code %d", code)}
			case code > 0:
				if code != lastCount {
					lastCount = code
					lastProgress = time.Now()
				} else if time.Since(lastProgress) > m.cfg.StallTimeout {
					return &retryableCode{code: CodeDownloadFailed, err: fmt.Errorf("download stalled for %s", m.cfg.StallTimeout)}
				}
			default:
				return ingesterr.New(ingesterr.TagVendorData, int(code), "", fmt.Errorf("unexpected status code"))
			}
		}
	}
}

// readLoop drains read_record until end-of-stream or a fatal/retryable
// error, bounded by the configured read budget. Records of files
// already in skipFiles are silently passed over; a file is added to
// skipFiles once all of its records have been handled (at its data
// boundary, at the first record of the next file, or at end-of-stream).
func (m *Manager) readLoop(ctx context.Context, skipFiles SkipFiles, handle RecordHandler) (int, error) {
	fetched := 0
	current := ""
	finishFile := func() {
		if current != "" {
			skipFiles.Add(current)
			current = ""
		}
	}
	for i := 0; i < m.cfg.ReadBudget; i++ {
		select {
		case <-ctx.Done():
			return fetched, ctx.Err()
		default:
		}

		res, err := m.vendor.ReadRecord(ctx, 4096)
		if err != nil {
			return fetched, ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "read vendor record")
		}

		switch {
		case res.Code == CodeOK:
			finishFile()
			return fetched, nil
		case res.Code == CodeDataBoundary:
			finishFile()
			continue
		case res.Code == CodeFileNotYetDelivered:
			continue
		case res.Code.Recoverable():
			if _, err := m.vendor.FileDelete(ctx, res.FileName); err != nil {
				return fetched, ingesterr.Wrap(ingesterr.TagVendorData, int(res.Code), "", err, "delete corrupted file")
			}
			continue
		case res.Code.Retryable():
			return fetched, &retryableCode{code: res.Code, err: fmt.Errorf("read_record returned retryable code %d", res.Code)}
		case res.Code > 0:
			if skipFiles.Contains(res.FileName) {
				continue
			}
			if res.FileName != current {
				finishFile()
				current = res.FileName
			}
			if err := handle(ctx, res.Bytes, res.FileName); err != nil {
				return fetched, fmt.Errorf("record handler: %w", err)
			}
			fetched++
		default:
			return fetched, ingesterr.New(ingesterr.TagVendorData, int(res.Code), "", fmt.Errorf("fatal read_record code"))
		}
	}
	return fetched, fmt.Errorf("read loop exceeded budget of %d iterations", m.cfg.ReadBudget)
}

// waitAndCloseForRetry closes the current session, waits per the
// documented recovery window for code, and leaves the manager ready
// to re-open with the same parameters.
func (m *Manager) waitAndCloseForRetry(ctx context.Context, code ResultCode) error {
	m.vendor.Close(ctx)

	wait := m.cfg.DownloadRetryWait
	if code == CodeRateLimit {
		wait = m.cfg.RateLimitBackoff
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = wait
	b.RandomizationFactor = 0
	b.MaxElapsedTime = wait * 4
	b.Reset()
	timer := time.NewTimer(b.NextBackOff())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
