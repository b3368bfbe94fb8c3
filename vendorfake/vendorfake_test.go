package vendorfake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/session"
)

func TestCorruptedFileReportsCorruptCodeThenClearsOnDelete(t *testing.T) {
	s := &Session{
		Files: []File{
			{Name: "bad.dat", Records: [][]byte{[]byte("RA-1")}, Corrupted: true},
		},
	}

	first, err := s.ReadRecord(context.Background(), 4096)
	require.NoError(t, err)
	assert.Equal(t, session.CodeCorruptFileA, first.Code)
	assert.Equal(t, "bad.dat", first.FileName)

	code, err := s.FileDelete(context.Background(), "bad.dat")
	require.NoError(t, err)
	assert.Equal(t, session.CodeOK, code)

	second, err := s.ReadRecord(context.Background(), 4096)
	require.NoError(t, err)
	assert.Equal(t, session.ResultCode(len(second.Bytes)), second.Code, "after deletion the file must deliver its record normally")
}

func TestReadRecordYieldsBoundaryBetweenFilesThenOKAtEnd(t *testing.T) {
	s := &Session{
		Files: []File{
			{Name: "f1", Records: [][]byte{[]byte("a")}},
			{Name: "f2", Records: [][]byte{[]byte("b")}},
		},
	}

	r1, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, []byte("a"), r1.Bytes)

	boundary, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, session.CodeDataBoundary, boundary.Code)

	r2, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, []byte("b"), r2.Bytes)

	boundary2, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, session.CodeDataBoundary, boundary2.Code)

	done, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, session.CodeOK, done.Code)
}

func TestResetClearsDeliveryStateForReuse(t *testing.T) {
	s := &Session{Files: []File{{Name: "f1", Records: [][]byte{[]byte("a")}}}}

	s.ReadRecord(context.Background(), 4096)
	s.ReadRecord(context.Background(), 4096) // boundary, marks f1 delivered
	assert.Equal(t, 1, s.deliveredCount())

	s.Reset()
	assert.Equal(t, 0, s.deliveredCount())

	open, err := s.Open(context.Background(), "RACE", "", int(session.OptionSetup))
	require.NoError(t, err)
	assert.Equal(t, 1, open.DownloadCount, "after reset, f1 must be reported as still pending download")
}

func TestOpenActivatesScriptedInterruptionOnceThresholdReached(t *testing.T) {
	s := &Session{
		Files: []File{
			{Name: "f1", Records: [][]byte{[]byte("a")}},
			{Name: "f2", Records: [][]byte{[]byte("b")}},
		},
		Interruptions: []Interruption{{AfterFiles: 1, Code: session.CodeDownloadFailed}},
	}

	_, err := s.Open(context.Background(), "RACE", "", int(session.OptionSetup))
	require.NoError(t, err)

	s.ReadRecord(context.Background(), 4096)                       // f1's record
	boundary, _ := s.ReadRecord(context.Background(), 4096)         // f1 -> delivered
	assert.Equal(t, session.CodeDataBoundary, boundary.Code)

	interrupted, _ := s.ReadRecord(context.Background(), 4096)
	assert.Equal(t, session.CodeDownloadFailed, interrupted.Code, "the interruption fires once deliveredCount reaches AfterFiles")
}
