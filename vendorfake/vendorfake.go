// Package vendorfake is an in-memory stand-in for the platform-native
// vendor session object, implementing session.Vendor so tests can
// script download interruptions, corrupted files, and rate limits
// without a real vendor component.
package vendorfake

import (
	"context"
	"fmt"

	"github.com/raceingest/core/session"
)

// File is one downloadable unit: a name and the record buffers it
// contains, delivered in order by ReadRecord.
type File struct {
	Name       string
	Records    [][]byte
	Corrupted  bool // if true, the first read of this file returns a recoverable corrupt-file code
}

// Interruption describes a one-time fault injected after a given
// number of files have been fully delivered across the Session's
// lifetime (persisted across Close/re-Open within the same Session
// value, mirroring the vendor's own behaviour of caching earlier
// files across reopens).
type Interruption struct {
	AfterFiles int
	Code       session.ResultCode
}

// Session is a scripted session.Vendor. Construct one per test
// scenario; it is not safe for concurrent use, matching the real
// vendor object's single-owner contract.
type Session struct {
	Files         []File
	Interruptions []Interruption

	AuthCode  session.ResultCode // defaults to CodeOK if zero
	OpenCode  session.ResultCode
	InitCode  session.ResultCode

	delivered  map[string]bool
	fired      map[int]bool
	fileIdx    int
	recordIdx  int
	interrupt  *Interruption
}

func (s *Session) ensureInit() {
	if s.delivered == nil {
		s.delivered = map[string]bool{}
	}
	if s.fired == nil {
		s.fired = map[int]bool{}
	}
}

func (s *Session) Initialise(ctx context.Context, serviceKey string) (session.ResultCode, error) {
	s.ensureInit()
	if s.InitCode != 0 {
		return s.InitCode, nil
	}
	return session.CodeOK, nil
}

func (s *Session) remainingDownloadCount() int {
	n := 0
	for _, f := range s.Files {
		if !s.delivered[f.Name] {
			n++
		}
	}
	return n
}

func (s *Session) Open(ctx context.Context, dataSpec, fromTime string, option int) (session.OpenResult, error) {
	s.ensureInit()
	if s.OpenCode != 0 {
		return session.OpenResult{Code: s.OpenCode}, nil
	}
	s.interrupt = nil
	for i := range s.Interruptions {
		if s.fired[i] {
			continue
		}
		in := s.Interruptions[i]
		if in.AfterFiles <= s.deliveredCount() {
			continue
		}
		s.interrupt = &s.Interruptions[i]
		break
	}
	return session.OpenResult{
		Code:          session.CodeOK,
		DownloadCount: s.remainingDownloadCount(),
	}, nil
}

func (s *Session) RealTimeOpen(ctx context.Context, dataSpec, key string) (session.OpenResult, error) {
	s.ensureInit()
	return session.OpenResult{Code: session.CodeOK, ReadCount: s.totalRecords()}, nil
}

func (s *Session) deliveredCount() int {
	n := 0
	for _, f := range s.Files {
		if s.delivered[f.Name] {
			n++
		}
	}
	return n
}

func (s *Session) totalRecords() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Records)
	}
	return n
}

// Status has no asynchronous download phase to simulate: it reports
// completion immediately, unless the pending interruption's file
// threshold has already been reached, in which case it returns that
// interruption's code (ReadRecord returns it too, and consumes it).
func (s *Session) Status(ctx context.Context) (session.ResultCode, error) {
	if s.interrupt != nil && s.deliveredCount() >= currentInterruptThreshold(s) {
		code := s.interrupt.Code
		return code, nil
	}
	return session.CodeOK, nil
}

func currentInterruptThreshold(s *Session) int {
	if s.interrupt == nil {
		return -1
	}
	return s.interrupt.AfterFiles
}

func (s *Session) ReadRecord(ctx context.Context, bufferSize int) (session.ReadResult, error) {
	s.ensureInit()

	for s.fileIdx < len(s.Files) {
		f := s.Files[s.fileIdx]

		if s.interrupt != nil && s.deliveredCount() >= s.interrupt.AfterFiles {
			for i := range s.Interruptions {
				if &s.Interruptions[i] == s.interrupt {
					s.fired[i] = true
				}
			}
			code := s.interrupt.Code
			s.interrupt = nil
			return session.ReadResult{Code: code, FileName: f.Name}, nil
		}

		if f.Corrupted && s.recordIdx == 0 {
			return session.ReadResult{Code: session.CodeCorruptFileA, FileName: f.Name}, nil
		}

		if s.recordIdx < len(f.Records) {
			rec := f.Records[s.recordIdx]
			s.recordIdx++
			return session.ReadResult{Code: session.ResultCode(len(rec)), Bytes: rec, FileName: f.Name}, nil
		}

		s.delivered[f.Name] = true
		s.fileIdx++
		s.recordIdx = 0
		return session.ReadResult{Code: session.CodeDataBoundary, FileName: f.Name}, nil
	}

	return session.ReadResult{Code: session.CodeOK}, nil
}

func (s *Session) Skip(ctx context.Context) error { return nil }

func (s *Session) FileDelete(ctx context.Context, fileName string) (session.ResultCode, error) {
	s.ensureInit()
	for i, f := range s.Files {
		if f.Name == fileName {
			s.Files[i].Corrupted = false
		}
	}
	return session.CodeOK, nil
}

func (s *Session) Close(ctx context.Context) (session.ResultCode, error) {
	s.fileIdx = 0
	s.recordIdx = 0
	return session.CodeOK, nil
}

// Reset clears delivery state so the same script can be reused across
// test cases.
func (s *Session) Reset() {
	s.delivered = map[string]bool{}
	s.fired = map[int]bool{}
	s.fileIdx = 0
	s.recordIdx = 0
	s.interrupt = nil
}

var _ session.Vendor = (*Session)(nil)

func (f File) String() string {
	return fmt.Sprintf("%s(%d records)", f.Name, len(f.Records))
}
