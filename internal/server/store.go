package server

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the authoritative live state: rooms and their players, guarded
// by one mutex, plus change-notification fanout. Mutation closures run
// inside the critical section, so a composite transition (range update,
// history append, turn flags) is observed as a single change.
type Store struct {
	mu         sync.Mutex
	codeLength int
	rooms      map[string]*Room
	roomSubs   map[string]map[uint64]chan Room
	playerSubs map[string]map[uint64]chan []Player
	nextSubID  uint64
}

func NewStore(codeLength int) *Store {
	return &Store{
		codeLength: codeLength,
		rooms:      make(map[string]*Room),
		roomSubs:   make(map[string]map[uint64]chan Room),
		playerSubs: make(map[string]map[uint64]chan []Player),
	}
}

func (s *Store) CreateRoom() (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := ""
	for attempt := 0; attempt < 32; attempt++ {
		candidate := newJoinCode(s.codeLength)
		if s.findByCodeLocked(candidate) == nil {
			code = candidate
			break
		}
	}
	if code == "" {
		return Room{}, fmt.Errorf("join code space exhausted: %w", ErrStoreUnavailable)
	}

	now := time.Now().UTC()
	room := &Room{
		ID:        uuid.NewString(),
		Code:      code,
		Status:    statusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.rooms[room.ID] = room
	return copyRoom(room), nil
}

func (s *Store) GetRoom(id string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return Room{}, false
	}
	return copyRoom(room), true
}

// FindRoomByCode resolves a join code case-insensitively.
func (s *Store) FindRoomByCode(code string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.findByCodeLocked(code)
	if room == nil {
		return Room{}, false
	}
	return copyRoom(room), true
}

func (s *Store) findByCodeLocked(code string) *Room {
	for _, room := range s.rooms {
		if equalFoldASCII(room.Code, code) {
			return room
		}
	}
	return nil
}

// UpdateRoom applies fn to the room inside the critical section, then
// notifies room subscribers. Player subscribers are notified too when fn
// changed the player set, so one logical rotation is one notification.
// A closure that leaves the room byte-identical is a no-op: no UpdatedAt
// bump, no notification.
func (s *Store) UpdateRoom(id string, fn func(room *Room) error) (Room, error) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return Room{}, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	before := copyRoom(room)
	if err := fn(room); err != nil {
		s.mu.Unlock()
		return Room{}, err
	}
	if reflect.DeepEqual(before, *room) {
		s.mu.Unlock()
		return before, nil
	}
	room.UpdatedAt = time.Now().UTC()
	snapshot := copyRoom(room)
	deliverRoom(s.roomTargetsLocked(id), snapshot)
	if !reflect.DeepEqual(before.Players, room.Players) {
		deliverPlayers(s.playerTargetsLocked(id), snapshot.Players)
	}
	s.mu.Unlock()
	return snapshot, nil
}

func (s *Store) ListPlayers(roomID string) ([]Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return copyPlayers(room.Players), nil
}

func (s *Store) InsertPlayer(roomID, name string, isHost bool) (Player, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return Player{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	player := Player{
		ID:       uuid.NewString(),
		RoomID:   roomID,
		Name:     name,
		IsHost:   isHost,
		JoinedAt: time.Now().UTC(),
	}
	room.Players = append(room.Players, player)
	deliverPlayers(s.playerTargetsLocked(roomID), copyPlayers(room.Players))
	s.mu.Unlock()
	return player, nil
}

func (s *Store) UpdatePlayer(roomID, playerID string, fn func(player *Player)) (Player, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return Player{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	index := room.playerIndex(playerID)
	if index < 0 {
		s.mu.Unlock()
		return Player{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	fn(&room.Players[index])
	player := room.Players[index]
	deliverPlayers(s.playerTargetsLocked(roomID), copyPlayers(room.Players))
	s.mu.Unlock()
	return player, nil
}

// DeletePlayer removes the player row. Delete notifications are not
// scoped to the owning room: every player subscription gets a fresh list
// of its own room so cross-room deletes cannot desynchronize a view.
func (s *Store) DeletePlayer(roomID, playerID string) error {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	index := room.playerIndex(playerID)
	if index < 0 {
		s.mu.Unlock()
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	room.Players = append(room.Players[:index], room.Players[index+1:]...)
	s.notifyAllPlayerSubsLocked()
	s.mu.Unlock()
	return nil
}

// AdoptRoom inserts a fully-built room, used when restoring from the
// database after a restart.
func (s *Store) AdoptRoom(room Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return fmt.Errorf("room %s already live: %w", room.ID, ErrInvalidState)
	}
	if s.findByCodeLocked(room.Code) != nil {
		return fmt.Errorf("code %s already live: %w", room.Code, ErrInvalidState)
	}
	adopted := copyRoom(&room)
	s.rooms[room.ID] = &adopted
	return nil
}

func (s *Store) DeleteRoom(id string) error {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	hadPlayers := len(room.Players) > 0
	delete(s.rooms, id)
	for _, ch := range s.roomSubs[id] {
		close(ch)
	}
	delete(s.roomSubs, id)
	for _, ch := range s.playerSubs[id] {
		close(ch)
	}
	delete(s.playerSubs, id)
	if hadPlayers {
		s.notifyAllPlayerSubsLocked()
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) ListRooms() []Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, copyRoom(room))
	}
	return list
}

// SubscribeRoom streams room snapshots on every room update. The returned
// cancel is deterministic: after it returns, no further sends happen and
// the channel is closed.
func (s *Store) SubscribeRoom(roomID string) (<-chan Room, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Room, subscriptionBuffer)
	subs := s.roomSubs[roomID]
	if subs == nil {
		subs = make(map[uint64]chan Room)
		s.roomSubs[roomID] = subs
	}
	subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.roomSubs[roomID]; ok {
			if ch, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.roomSubs, roomID)
			}
		}
	}
	return ch, cancel
}

// SubscribePlayers streams the full re-fetched player list on any player
// change relevant to the room (and on any delete anywhere, see
// DeletePlayer).
func (s *Store) SubscribePlayers(roomID string) (<-chan []Player, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan []Player, subscriptionBuffer)
	subs := s.playerSubs[roomID]
	if subs == nil {
		subs = make(map[uint64]chan []Player)
		s.playerSubs[roomID] = subs
	}
	subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.playerSubs[roomID]; ok {
			if ch, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.playerSubs, roomID)
			}
		}
	}
	return ch, cancel
}

const subscriptionBuffer = 16

// notifyAllPlayerSubsLocked pushes each subscribed room's own fresh list.
// Used for deletes, which are not scoped to a room.
func (s *Store) notifyAllPlayerSubsLocked() {
	for subRoomID := range s.playerSubs {
		subRoom, ok := s.rooms[subRoomID]
		if !ok {
			continue
		}
		deliverPlayers(s.playerTargetsLocked(subRoomID), copyPlayers(subRoom.Players))
	}
}

func (s *Store) roomTargetsLocked(roomID string) []chan Room {
	subs := s.roomSubs[roomID]
	targets := make([]chan Room, 0, len(subs))
	for _, ch := range subs {
		targets = append(targets, ch)
	}
	return targets
}

func (s *Store) playerTargetsLocked(roomID string) []chan []Player {
	subs := s.playerSubs[roomID]
	targets := make([]chan []Player, 0, len(subs))
	for _, ch := range subs {
		targets = append(targets, ch)
	}
	return targets
}

// deliverRoom pushes a snapshot without blocking; it is called with the
// store lock held so sends cannot race a cancel's close. A full mailbox
// drops the oldest entry: subscribers converge on the latest snapshot,
// and snapshots are idempotent to re-apply.
func deliverRoom(targets []chan Room, snapshot Room) {
	for _, ch := range targets {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func deliverPlayers(targets []chan []Player, list []Player) {
	for _, ch := range targets {
		select {
		case ch <- list:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- list:
			default:
			}
		}
	}
}

func copyRoom(room *Room) Room {
	out := *room
	out.Players = copyPlayers(room.Players)
	if room.State != nil {
		out.State = append([]byte(nil), room.State...)
	}
	return out
}

func copyPlayers(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	return out
}
