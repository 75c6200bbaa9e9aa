// Package mocks provides centralized mock implementations for testing.
//
// The store mocks embed testify's mock.Mock and are configured with On/Return:
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, int64(1)).Return(nil, store.ErrUserNotFound)
//
// EventRecorder captures emitted domain events so tests can assert on them.
package mocks
