// Package vendormock provides a gomock-style double for session.Vendor,
// for tests that need to assert call order or count rather than script
// a full in-memory session (vendorfake.Session covers that case).
//
// Hand-written in the shape mockgen would produce for session.Vendor;
// kept here rather than generated since no code-generation step runs
// as part of building this module.
package vendormock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/raceingest/core/session"
)

// MockVendor is a mock of the session.Vendor interface.
type MockVendor struct {
	ctrl     *gomock.Controller
	recorder *MockVendorMockRecorder
}

// MockVendorMockRecorder records expected calls on MockVendor.
type MockVendorMockRecorder struct {
	mock *MockVendor
}

// NewMockVendor builds a new mock instance.
func NewMockVendor(ctrl *gomock.Controller) *MockVendor {
	mock := &MockVendor{ctrl: ctrl}
	mock.recorder = &MockVendorMockRecorder{mock}
	return mock
}

// EXPECT returns a recorder used to set expectations.
func (m *MockVendor) EXPECT() *MockVendorMockRecorder {
	return m.recorder
}

func (m *MockVendor) Initialise(ctx context.Context, serviceKey string) (session.ResultCode, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Initialise", ctx, serviceKey)
	ret0, _ := ret[0].(session.ResultCode)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) Initialise(ctx, serviceKey interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Initialise", reflect.TypeOf((*MockVendor)(nil).Initialise), ctx, serviceKey)
}

func (m *MockVendor) Open(ctx context.Context, dataSpec string, fromTime string, option int) (session.OpenResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Open", ctx, dataSpec, fromTime, option)
	ret0, _ := ret[0].(session.OpenResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) Open(ctx, dataSpec, fromTime, option interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Open", reflect.TypeOf((*MockVendor)(nil).Open), ctx, dataSpec, fromTime, option)
}

func (m *MockVendor) RealTimeOpen(ctx context.Context, dataSpec string, key string) (session.OpenResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RealTimeOpen", ctx, dataSpec, key)
	ret0, _ := ret[0].(session.OpenResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) RealTimeOpen(ctx, dataSpec, key interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RealTimeOpen", reflect.TypeOf((*MockVendor)(nil).RealTimeOpen), ctx, dataSpec, key)
}

func (m *MockVendor) Status(ctx context.Context) (session.ResultCode, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Status", ctx)
	ret0, _ := ret[0].(session.ResultCode)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) Status(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Status", reflect.TypeOf((*MockVendor)(nil).Status), ctx)
}

func (m *MockVendor) ReadRecord(ctx context.Context, bufferSize int) (session.ReadResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadRecord", ctx, bufferSize)
	ret0, _ := ret[0].(session.ReadResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) ReadRecord(ctx, bufferSize interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadRecord", reflect.TypeOf((*MockVendor)(nil).ReadRecord), ctx, bufferSize)
}

func (m *MockVendor) Skip(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Skip", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockVendorMockRecorder) Skip(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Skip", reflect.TypeOf((*MockVendor)(nil).Skip), ctx)
}

func (m *MockVendor) FileDelete(ctx context.Context, fileName string) (session.ResultCode, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FileDelete", ctx, fileName)
	ret0, _ := ret[0].(session.ResultCode)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) FileDelete(ctx, fileName interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FileDelete", reflect.TypeOf((*MockVendor)(nil).FileDelete), ctx, fileName)
}

func (m *MockVendor) Close(ctx context.Context) (session.ResultCode, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close", ctx)
	ret0, _ := ret[0].(session.ResultCode)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockVendorMockRecorder) Close(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockVendor)(nil).Close), ctx)
}

var _ session.Vendor = (*MockVendor)(nil)
