package main

import (
	"context"
	"fmt"

	"github.com/raceingest/core/session"
)

// unimplementedVendor stands in for the real platform-native vendor
// component, which this module treats as an opaque external
// collaborator (spec.md §1). A production entrypoint replaces this
// with a real binding; tests use vendorfake instead.
type unimplementedVendor struct{}

func newUnimplementedVendor() session.Vendor { return unimplementedVendor{} }

func (unimplementedVendor) Initialise(ctx context.Context, serviceKey string) (session.ResultCode, error) {
	return 0, fmt.Errorf("vendor component binding not wired in this entrypoint")
}

func (unimplementedVendor) Open(ctx context.Context, dataSpec, fromTime string, option int) (session.OpenResult, error) {
	return session.OpenResult{}, fmt.Errorf("vendor component binding not wired in this entrypoint")
}

func (unimplementedVendor) RealTimeOpen(ctx context.Context, dataSpec, key string) (session.OpenResult, error) {
	return session.OpenResult{}, fmt.Errorf("vendor component binding not wired in this entrypoint")
}

func (unimplementedVendor) Status(ctx context.Context) (session.ResultCode, error) {
	return 0, fmt.Errorf("vendor component binding not wired in this entrypoint")
}

func (unimplementedVendor) ReadRecord(ctx context.Context, bufferSize int) (session.ReadResult, error) {
	return session.ReadResult{}, fmt.Errorf("vendor component binding not wired in this entrypoint")
}

func (unimplementedVendor) Skip(ctx context.Context) error { return nil }

func (unimplementedVendor) FileDelete(ctx context.Context, fileName string) (session.ResultCode, error) {
	return 0, nil
}

func (unimplementedVendor) Close(ctx context.Context) (session.ResultCode, error) { return 0, nil }
