package database

import "time"

type User struct {
	Id           int
	Username     string
	FirstName    string
	LastName     string
	EmailAddress string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// PublicProfile is the part of a user that is shown to anyone.
type PublicProfile struct {
	Username  string
	FirstName string
	LastName  string
}

type Listing struct {
	Id          int
	Name        string
	Price       float64
	Zipcode     string
	Capacity    int
	Description string
	Amenities   string
	PhotoUrl    string
	HostId      int
	// Host is only resolved by GetListing.
	Host *PublicProfile
}

type Thread struct {
	Id        int
	ListingId int
	HostId    int
	GuestId   int
	StartedAt time.Time
	// CounterpartUsername is the username of the other participant. It is
	// only set by the role-aware lookups.
	CounterpartUsername string
}

type Message struct {
	Id       int
	FromId   int
	ToId     int
	Content  string
	SentAt   time.Time
	ThreadId int
}

type CreateUserParams struct {
	Username     string
	FirstName    string
	LastName     string
	EmailAddress string
	PasswordHash string
}

type CreateListingParams struct {
	Name        string
	Price       float64
	Zipcode     string
	Capacity    int
	Description string
	Amenities   string
	PhotoUrl    string
	HostId      int
}

type CreateThreadParams struct {
	ListingId int
	HostId    int
	GuestId   int
}

type CreateMessageParams struct {
	ToId     int
	FromId   int
	Content  string
	ThreadId int
}
