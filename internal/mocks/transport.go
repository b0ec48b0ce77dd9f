package mocks

import (
	context "context"
	json "encoding/json"

	mock "github.com/stretchr/testify/mock"
)

// Transport is a testify mock of eth.Transport. Call receives params as a
// single []any argument, so expectations match on (ctx, method, params).
type Transport struct {
	mock.Mock
}

// Call provides a mock function with given fields: ctx, method, params
func (_m *Transport) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	ret := _m.Called(ctx, method, params)

	var r0 json.RawMessage
	if rf, ok := ret.Get(0).(func(context.Context, string, []any) json.RawMessage); ok {
		r0 = rf(ctx, method, params)
	} else if ret.Get(0) != nil {
		switch v := ret.Get(0).(type) {
		case json.RawMessage:
			r0 = v
		case string:
			r0 = json.RawMessage(v)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, []any) error); ok {
		r1 = rf(ctx, method, params)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewTransport creates a new instance of Transport. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewTransport(t interface {
	mock.TestingT
	Cleanup(func())
}) *Transport {
	m := &Transport{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
