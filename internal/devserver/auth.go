package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/stylequiz/internal/credential"
	"github.com/abhisek/stylequiz/internal/vark"
)

var (
	errEmailTaken  = errors.New("an account with this email already exists")
	errBadLogin    = errors.New("invalid email or password")
	errBadToken    = errors.New("invalid or expired token")
	errMissingAuth = errors.New("missing bearer token")
)

type account struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Hash      []byte
	Vark      *vark.Result
	CreatedAt time.Time
}

// accounts is the in-memory user table. Records are handed out as copies;
// setVark swaps the Vark pointer rather than writing through it.
type accounts struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
	cost    int
}

func newAccounts(cost int) *accounts {
	return &accounts{byEmail: make(map[string]*account), byID: make(map[string]*account), cost: cost}
}

func (a *accounts) register(email, password, role string, now time.Time) (account, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return account{}, fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byEmail[key]; ok {
		return account{}, errEmailTaken
	}
	acc := &account{
		ID:        uuid.NewString(),
		Email:     key,
		Name:      strings.SplitN(key, "@", 2)[0],
		Role:      role,
		Hash:      hash,
		CreatedAt: now,
	}
	a.byEmail[key] = acc
	a.byID[acc.ID] = acc
	return *acc, nil
}

func (a *accounts) login(email, password string) (account, error) {
	a.mu.RLock()
	stored, ok := a.byEmail[strings.ToLower(strings.TrimSpace(email))]
	var acc account
	if ok {
		acc = *stored
	}
	a.mu.RUnlock()
	if !ok {
		return account{}, errBadLogin
	}
	if bcrypt.CompareHashAndPassword(acc.Hash, []byte(password)) != nil {
		return account{}, errBadLogin
	}
	return acc, nil
}

func (a *accounts) get(id string) (account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byID[id]
	if !ok {
		return account{}, false
	}
	return *acc, true
}

func (a *accounts) setVark(id string, r vark.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if acc, ok := a.byID[id]; ok {
		acc.Vark = &r
	}
}

func (a *accounts) students() []account {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []account
	for _, acc := range a.byID {
		if acc.Role == "student" {
			out = append(out, *acc)
		}
	}
	return out
}

// tokens issues and verifies HS256 tokens carrying credential.Claims, so
// the client can read its own identity without the key.
type tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func (t tokens) issue(acc account, now time.Time) (string, error) {
	claims := credential.Claims{
		UserID: acc.ID,
		Email:  acc.Email,
		Name:   acc.Name,
		Role:   acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t tokens) parse(raw string, now time.Time) (*credential.Claims, error) {
	claims := &credential.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadToken, err)
	}
	return claims, nil
}

type claimsKey struct{}

func withClaims(ctx context.Context, c *credential.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func claimsFrom(ctx context.Context) *credential.Claims {
	c, _ := ctx.Value(claimsKey{}).(*credential.Claims)
	return c
}
