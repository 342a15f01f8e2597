// Package mocks provides test doubles for the exolve client.
package mocks

import (
	"context"

	exolve "github.com/sells-group/call-insights/pkg/exolve"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ListCalls provides a mock function with given fields: ctx, req
func (_m *MockClient) ListCalls(ctx context.Context, req exolve.ListCallsRequest) (*exolve.ListCallsResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for ListCalls")
	}

	var r0 *exolve.ListCallsResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, exolve.ListCallsRequest) (*exolve.ListCallsResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*exolve.ListCallsResponse)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// GetCall provides a mock function with given fields: ctx, callID
func (_m *MockClient) GetCall(ctx context.Context, callID string) (map[string]any, error) {
	ret := _m.Called(ctx, callID)

	if len(ret) == 0 {
		panic("no return value specified for GetCall")
	}

	var r0 map[string]any
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (map[string]any, error)); ok {
		return rf(ctx, callID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]any)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
