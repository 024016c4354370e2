package tuntap

import (
	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
)

// MockLinkQuerier is a mock implementation of the LinkQuerier interface.
type MockLinkQuerier struct {
	mock.Mock
}

func (m *MockLinkQuerier) LinkByName(name string) (netlink.Link, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(netlink.Link), args.Error(1)
}
