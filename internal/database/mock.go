package database

import (
	"github.com/npezzotti/go-hostly/internal/query"
	"github.com/stretchr/testify/mock"
)

type MockMarketplaceRepository struct {
	mock.Mock
}

func (m *MockMarketplaceRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockMarketplaceRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketplaceRepository) GetUserById(userId int) (User, error) {
	args := m.Called(userId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketplaceRepository) GetUserByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketplaceRepository) CreateListing(params CreateListingParams) (Listing, error) {
	args := m.Called(params)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockMarketplaceRepository) FindAllListings() ([]Listing, error) {
	args := m.Called()
	if listings, ok := args.Get(0).([]Listing); ok {
		return listings, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) FindListings(filters query.Filters) ([]Listing, error) {
	args := m.Called(filters)
	if listings, ok := args.Get(0).([]Listing); ok {
		return listings, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) SearchListings(term string) ([]Listing, error) {
	args := m.Called(term)
	if listings, ok := args.Get(0).([]Listing); ok {
		return listings, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) GetListing(id int) (Listing, error) {
	args := m.Called(id)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockMarketplaceRepository) UpdateListing(id int, changes query.Changes) (Listing, error) {
	args := m.Called(id, changes)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockMarketplaceRepository) DeleteListing(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockMarketplaceRepository) CreateThread(params CreateThreadParams) (Thread, bool, error) {
	args := m.Called(params)
	return args.Get(0).(Thread), args.Bool(1), args.Error(2)
}
func (m *MockMarketplaceRepository) GetThread(id int) (Thread, error) {
	args := m.Called(id)
	return args.Get(0).(Thread), args.Error(1)
}
func (m *MockMarketplaceRepository) GetThreadsForHost(userId int) ([]Thread, error) {
	args := m.Called(userId)
	if threads, ok := args.Get(0).([]Thread); ok {
		return threads, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) GetThreadsForGuest(userId int) ([]Thread, error) {
	args := m.Called(userId)
	if threads, ok := args.Get(0).([]Thread); ok {
		return threads, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) GetAllThreadsForUser(userId int) ([]Thread, error) {
	args := m.Called(userId)
	if threads, ok := args.Get(0).([]Thread); ok {
		return threads, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockMarketplaceRepository) GetConversation(userA, userB int) ([]Message, error) {
	args := m.Called(userA, userB)
	if messages, ok := args.Get(0).([]Message); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMarketplaceRepository) GetMessagesFromThread(threadId int) ([]Message, error) {
	args := m.Called(threadId)
	if messages, ok := args.Get(0).([]Message); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ MarketplaceRepository = (*MockMarketplaceRepository)(nil)
