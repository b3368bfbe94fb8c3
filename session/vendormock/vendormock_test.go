package vendormock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/raceingest/core/session"
)

func TestRunLiveMonitorCallsVendorInOrderAndClosesEvenOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := NewMockVendor(ctrl)

	initCall := v.EXPECT().Initialise(gomock.Any(), "svc-key").Return(session.ResultCode(session.CodeOK), nil)
	openCall := v.EXPECT().RealTimeOpen(gomock.Any(), "RACE", "").
		Return(session.OpenResult{Code: session.CodeOK}, nil).After(initCall)
	readCall := v.EXPECT().ReadRecord(gomock.Any(), 4096).
		Return(session.ReadResult{Code: session.CodeOK}, nil).After(openCall)
	v.EXPECT().Close(gomock.Any()).Return(session.ResultCode(session.CodeOK), nil).After(readCall)

	mgr := session.NewManager(v, session.Config{ServiceKey: "svc-key"}, nil)
	result, err := mgr.RunLiveMonitor(context.Background(), session.Central, "RACE", "", func(context.Context, []byte, string) error {
		t.Fatal("no record should be delivered for an immediate end-of-stream")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 0, result.RecordsFetched)
}

func TestRunLiveMonitorSurfacesAuthFailureWithoutCallingReadRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := NewMockVendor(ctrl)

	v.EXPECT().Initialise(gomock.Any(), gomock.Any()).Return(session.ResultCode(session.CodeOK), nil)
	v.EXPECT().RealTimeOpen(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(session.OpenResult{Code: session.CodeAuthUnknownKey}, nil)
	v.EXPECT().Close(gomock.Any()).Return(session.ResultCode(session.CodeOK), nil)
	v.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).Times(0)

	mgr := session.NewManager(v, session.Config{}, nil)
	_, err := mgr.RunLiveMonitor(context.Background(), session.Central, "RACE", "", func(context.Context, []byte, string) error {
		return nil
	})

	require.Error(t, err)
}
