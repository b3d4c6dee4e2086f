package authority

import (
	"context"

	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAuthority mocks the AssetAuthority interface
type MockAuthority struct {
	mock.Mock
}

// ResolveAdministrator mocks the ResolveAdministrator method
func (m *MockAuthority) ResolveAdministrator(ctx context.Context, asset interfaces.Address) (interfaces.Address, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(interfaces.Address), args.Error(1)
}
