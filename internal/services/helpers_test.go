package services

import (
	"sync"
	"testing"
	"time"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/db"
	"clubdir/internal/models"
	"clubdir/internal/store/memstore"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu              sync.Mutex
	clubSubmitted   int
	clubDecided     int
	accessRequested int
	accessDecided   int
}

func (n *recordingNotifier) ClubSubmitted(*models.Club, *models.Principal) {
	n.mu.Lock()
	n.clubSubmitted++
	n.mu.Unlock()
}

func (n *recordingNotifier) ClubDecided(*models.Club) {
	n.mu.Lock()
	n.clubDecided++
	n.mu.Unlock()
}

func (n *recordingNotifier) AccessRequested(*models.AccessRequest, *models.Principal) {
	n.mu.Lock()
	n.accessRequested++
	n.mu.Unlock()
}

func (n *recordingNotifier) AccessDecided(*models.AccessRequest) {
	n.mu.Lock()
	n.accessDecided++
	n.mu.Unlock()
}

type fixture struct {
	db     *db.DB
	mem    *memstore.Store
	clock  *clock.Fake
	stats  *cache.Stats
	notes  *recordingNotifier
	auth   *Authorizer
	clubs  *ClubService
	access *AccessService
	events *EventService
	users  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fc := clock.NewFake(epoch)
	mem := memstore.New(fc)
	stats := cache.NewStats()
	counted := cache.NewCounted(mem, stats)
	d := db.New(counted, cache.New(counted, fc, nil), db.DefaultTables(), nil, fc, nil)
	notes := &recordingNotifier{}
	auth := NewAuthorizer(d)

	return &fixture{
		db:     d,
		mem:    mem,
		clock:  fc,
		stats:  stats,
		notes:  notes,
		auth:   auth,
		clubs:  NewClubService(d, auth, notes, nil),
		access: NewAccessService(d, notes, nil),
		events: NewEventService(d, auth, nil),
		users:  NewUserService(d, nil),
	}
}

func (f *fixture) writes() int {
	total := 0
	for _, table := range []string{"Clubs", "ClubMembers", "AccessRequests", "Users", "Events"} {
		total += f.mem.Writes(table)
	}
	return total
}
