// Package jwt issues the bearer tokens that open the admin editor. A login
// yields an access/refresh pair; each kind is signed with its own secret and
// only verifies as that kind.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrWrongKind    = errors.New("token of the wrong kind")
)

// Claims name the admin a token was issued to; the subject is the admin id.
type Claims struct {
	Username string `json:"usr,omitempty"`
	Kind     Kind   `json:"kind"`

	jwtlib.RegisteredClaims
}

func (c Claims) AdminID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Pair is what a login or refresh hands back to the editor client.
type Pair struct {
	Access          string
	Refresh         string
	AccessExpiresAt time.Time
}

type Config struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Service interface {
	IssuePair(adminID uuid.UUID, username string) (Pair, error)
	Verify(token string, kind Kind) (Claims, error)
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

type HMACService struct {
	issuer string
	keys   map[Kind]signingKey
	now    func() time.Time
}

var _ Service = (*HMACService)(nil)

func NewHMACService(cfg Config) *HMACService {
	return &HMACService{
		issuer: cfg.Issuer,
		keys: map[Kind]signingKey{
			KindAccess:  {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
			KindRefresh: {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		},
		now: time.Now,
	}
}

func (s *HMACService) IssuePair(adminID uuid.UUID, username string) (Pair, error) {
	if adminID == uuid.Nil {
		return Pair{}, ErrTokenInvalid
	}
	now := s.now().UTC()

	access, exp, err := s.sign(KindAccess, adminID, username, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, _, err := s.sign(KindRefresh, adminID, "", now)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh, AccessExpiresAt: exp}, nil
}

// Verify checks the signature, issuer and expiry with the secret of kind and
// rejects tokens that claim another kind.
func (s *HMACService) Verify(token string, kind Kind) (Claims, error) {
	key, err := s.key(kind)
	if err != nil {
		return Claims{}, err
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	var c Claims
	_, err = jwtlib.NewParser(opts...).ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return key.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	if _, err := c.AdminID(); err != nil {
		return Claims{}, fmt.Errorf("%w: subject: %v", ErrTokenInvalid, err)
	}
	return c, nil
}

func (s *HMACService) sign(kind Kind, adminID uuid.UUID, username string, now time.Time) (string, time.Time, error) {
	key, err := s.key(kind)
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(key.ttl)

	c := Claims{
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   adminID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *HMACService) key(kind Kind) (signingKey, error) {
	k, ok := s.keys[kind]
	if !ok || len(k.secret) == 0 || k.ttl <= 0 {
		return signingKey{}, fmt.Errorf("%w: no %s key configured", ErrTokenInvalid, kind)
	}
	return k, nil
}
