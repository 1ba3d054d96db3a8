package database

import "github.com/npezzotti/go-hostly/internal/query"

type UserRepository interface {
	CreateUser(params CreateUserParams) (User, error)
	GetUserById(userId int) (User, error)
	GetUserByUsername(username string) (User, error)
}

type ListingRepository interface {
	CreateListing(params CreateListingParams) (Listing, error)
	FindAllListings() ([]Listing, error)
	FindListings(filters query.Filters) ([]Listing, error)
	SearchListings(term string) ([]Listing, error)
	GetListing(id int) (Listing, error)
	UpdateListing(id int, changes query.Changes) (Listing, error)
	DeleteListing(id int) error
}

type ThreadRepository interface {
	CreateThread(params CreateThreadParams) (Thread, bool, error)
	GetThread(id int) (Thread, error)
	GetThreadsForHost(userId int) ([]Thread, error)
	GetThreadsForGuest(userId int) ([]Thread, error)
	GetAllThreadsForUser(userId int) ([]Thread, error)
}

type MessageRepository interface {
	CreateMessage(params CreateMessageParams) (Message, error)
	GetConversation(userA, userB int) ([]Message, error)
	GetMessagesFromThread(threadId int) ([]Message, error)
}

type MarketplaceRepository interface {
	Ping() error
	UserRepository
	ListingRepository
	ThreadRepository
	MessageRepository
}

var _ MarketplaceRepository = (*PgMarketplaceRepository)(nil)
