package contacts_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	contacts "github.com/contactio/go-contacts"
	"github.com/contactio/go-contacts/notify"
)

// testConfig implements contacts.Config with direct field access so each
// test can shrink the TTLs it cares about.
type testConfig struct {
	SigningKey       string
	SigningMethod    string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	EmailTokenTTL    time.Duration
	RecoveryTokenTTL time.Duration
	BaseURL          string
}

func newTestConfig() *testConfig {
	return &testConfig{
		SigningKey: "test-signing-key",
		BaseURL:    "http://localhost:8080",
	}
}

func (c *testConfig) GetSigningKey() string              { return c.SigningKey }
func (c *testConfig) GetSigningMethod() string           { return c.SigningMethod }
func (c *testConfig) GetAccessTokenTTL() time.Duration   { return c.AccessTokenTTL }
func (c *testConfig) GetRefreshTokenTTL() time.Duration  { return c.RefreshTokenTTL }
func (c *testConfig) GetEmailTokenTTL() time.Duration    { return c.EmailTokenTTL }
func (c *testConfig) GetRecoveryTokenTTL() time.Duration { return c.RecoveryTokenTTL }
func (c *testConfig) GetBaseURL() string                 { return c.BaseURL }

// MockDirectory implements contacts.AccountDirectory for testing
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByEmail(ctx context.Context, email string) (*contacts.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contacts.Account), args.Error(1)
}

func (m *MockDirectory) FindByUsername(ctx context.Context, username string) (*contacts.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contacts.Account), args.Error(1)
}

func (m *MockDirectory) Insert(ctx context.Context, account *contacts.Account) (*contacts.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contacts.Account), args.Error(1)
}

func (m *MockDirectory) Save(ctx context.Context, account *contacts.Account) (*contacts.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contacts.Account), args.Error(1)
}

// recordingDispatcher captures dispatched notifications on a channel so
// tests can wait on the async send.
type recordingDispatcher struct {
	messages chan notify.Notification
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{
		messages: make(chan notify.Notification, 4),
	}
}

func (d *recordingDispatcher) Send(ctx context.Context, msg notify.Notification) error {
	d.messages <- msg
	return nil
}

func (d *recordingDispatcher) wait(timeout time.Duration) (notify.Notification, bool) {
	select {
	case msg := <-d.messages:
		return msg, true
	case <-time.After(timeout):
		return notify.Notification{}, false
	}
}

// MockLogger implements contacts.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}
