// Package live pushes thread and message events to the websocket
// connections of the users involved.
package live

import (
	"log"

	"github.com/npezzotti/go-hostly/internal/stats"
	"github.com/npezzotti/go-hostly/internal/types"
)

type notification struct {
	userIds []int
	event   *types.Event
}

// Hub tracks the open connections of every user. All state is owned by the
// Run goroutine.
type Hub struct {
	log            *log.Logger
	stats          stats.StatsProvider
	clients        map[int]map[*Client]struct{}
	registerChan   chan *Client
	deRegisterChan chan *Client
	notifyChan     chan notification
	stop           chan struct{}
	done           chan struct{}
}

func NewHub(logger *log.Logger, st stats.StatsProvider) *Hub {
	return &Hub{
		log:            logger,
		stats:          st,
		clients:        make(map[int]map[*Client]struct{}),
		registerChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		notifyChan:     make(chan notification, 256),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.registerChan:
			h.log.Printf("adding live connection for user %d", c.userId)
			h.addClient(c)
		case c := <-h.deRegisterChan:
			h.log.Printf("removing live connection for user %d", c.userId)
			h.removeClient(c)
		case n := <-h.notifyChan:
			h.dispatch(n)
		case <-h.stop:
			h.log.Println("shutting down live connections")
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[int]map[*Client]struct{})

			close(h.done)
			return
		}
	}
}

// Register adds c to the hub. It reports false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.registerChan <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deRegister(c *Client) {
	select {
	case h.deRegisterChan <- c:
	case <-h.done:
	}
}

// Notify queues ev for every open connection of the given users. Duplicate
// ids receive the event once.
func (h *Hub) Notify(userIds []int, ev *types.Event) {
	select {
	case h.notifyChan <- notification{userIds: userIds, event: ev}:
	case <-h.done:
	default:
		h.log.Printf("notify channel full, dropping %s event", ev.Type)
	}
}

func (h *Hub) dispatch(n notification) {
	seen := make(map[int]struct{}, len(n.userIds))
	for _, id := range n.userIds {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		for c := range h.clients[id] {
			c.queueEvent(n.event)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	conns, ok := h.clients[c.userId]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userId] = conns
	}
	conns[c] = struct{}{}

	if h.stats != nil {
		h.stats.Incr(stats.LiveConnections)
	}
}

func (h *Hub) removeClient(c *Client) {
	conns, ok := h.clients[c.userId]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}

	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.userId)
	}
	close(c.send)

	if h.stats != nil {
		h.stats.Decr(stats.LiveConnections)
	}
}

func (h *Hub) Shutdown() {
	h.log.Println("received shutdown signal")
	close(h.stop)

	<-h.done
}
