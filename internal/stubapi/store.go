package stubapi

import (
	"errors"
	"sync"

	"github.com/clipmarket/client/internal/videos"
)

var (
	errUserNotFound       = errors.New("stubapi: user not found")
	errVideoNotFound      = errors.New("stubapi: video not found")
	errInsufficientWallet = errors.New("stubapi: insufficient balance")
	errAlreadyPurchased   = errors.New("stubapi: already purchased")
	errFreeVideo          = errors.New("stubapi: video is free")
)

// User is a stub account. Passwords are stored in the clear; the stub
// exists for local development and tests only.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Wallet    int
	Purchases []string
}

// Store holds the stub's in-memory fixtures. It applies purchase and
// gift arithmetic just well enough to exercise the client; it is a test
// fixture, not a ledger.
type Store struct {
	mu     sync.Mutex
	users  map[string]*User
	videos []videos.Payload
}

// NewStore returns an empty fixture store.
func NewStore() *Store {
	return &Store{users: make(map[string]*User)}
}

// AddUser registers an account.
func (s *Store) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := u
	s.users[u.ID] = &user
}

// AddVideo appends a video to the feed in insertion order.
func (s *Store) AddVideo(v videos.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, v)
}

func (s *Store) userByEmail(email string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, true
		}
	}
	return nil, false
}

func (s *Store) userByID(id string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	copied := *u
	copied.Purchases = append([]string(nil), u.Purchases...)
	return &copied, true
}

func (s *Store) feed() []videos.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]videos.Payload(nil), s.videos...)
}

func (s *Store) videoByID(id string) (videos.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.videos {
		if v.ID == id {
			return v, true
		}
	}
	return videos.Payload{}, false
}

// purchase debits the buyer and records the entitlement, returning the
// resulting balance.
func (s *Store) purchase(userID, videoID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, errUserNotFound
	}

	var video *videos.Payload
	for i := range s.videos {
		if s.videos[i].ID == videoID {
			video = &s.videos[i]
			break
		}
	}
	if video == nil {
		return 0, errVideoNotFound
	}
	if video.Price == 0 {
		return 0, errFreeVideo
	}
	for _, owned := range user.Purchases {
		if owned == videoID {
			return 0, errAlreadyPurchased
		}
	}
	if video.Price > user.Wallet {
		return 0, errInsufficientWallet
	}

	user.Wallet -= video.Price
	user.Purchases = append(user.Purchases, videoID)
	return user.Wallet, nil
}

// gift transfers amount from the sender to the creator's wallet when
// the creator also has a stub account, returning the sender's balance.
func (s *Store) gift(userID, creatorID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, errUserNotFound
	}
	if amount > user.Wallet {
		return 0, errInsufficientWallet
	}

	user.Wallet -= amount
	if creator, ok := s.users[creatorID]; ok {
		creator.Wallet += amount
	}
	return user.Wallet, nil
}

func (s *Store) balance(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, errUserNotFound
	}
	return user.Wallet, nil
}
