package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	EmailAddress string    `json:"email,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Profile is what other users may see of an account.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Listing struct {
	Id          int      `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Zipcode     string   `json:"zipcode"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Amenities   string   `json:"amenities"`
	PhotoUrl    string   `json:"photoUrl"`
	HostId      int      `json:"hostId"`
	Host        *Profile `json:"host,omitempty"`
}

type Thread struct {
	Id          int       `json:"id"`
	ListingId   int       `json:"listingId"`
	HostId      int       `json:"hostId"`
	GuestId     int       `json:"guestId"`
	StartedAt   time.Time `json:"startedAt"`
	Counterpart string    `json:"username,omitempty"`
}

type Message struct {
	Id       int       `json:"id"`
	FromId   int       `json:"fromId"`
	ToId     int       `json:"toId"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
	ThreadId int       `json:"threadId"`
}

type EventType string

const (
	EventThreadCreated  EventType = "thread.created"
	EventMessageCreated EventType = "message.created"
)

// Event is pushed to connected participants when a thread or message is
// created.
type Event struct {
	Type    EventType `json:"type"`
	Thread  *Thread   `json:"thread,omitempty"`
	Message *Message  `json:"message,omitempty"`
}
