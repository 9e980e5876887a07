// Package auth signs the links handed out for share pages.
package auth

import (
	"time"

	"nearby/config"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const shareTokenIssuer = "nearby"

// shareTokenService implements ShareTokenService with HMAC-signed JWTs.
type shareTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewShareTokenService creates a share token service from share.secret and share.linkTtl.
func NewShareTokenService(cfg *config.Config) (service.ShareTokenService, error) {
	if cfg.Share == nil || cfg.Share.Secret == "" {
		return nil, errors.New("share link secret must be provided")
	}

	return &shareTokenService{
		secret: []byte(cfg.Share.Secret),
		ttl:    cfg.Share.LinkTTL,
		now:    time.Now,
	}, nil
}

func (s *shareTokenService) Generate(shareID uuid.UUID) (string, error) {
	now := s.now()
	claims := &service.ShareClaims{
		ShareID: shareID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shareTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign share token")
	}

	return signed, nil
}

func (s *shareTokenService) Validate(tokenString string) (*service.ShareClaims, error) {
	claims := &service.ShareClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithIssuer(shareTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "invalid share token")
	}
	if claims.ShareID == uuid.Nil {
		return nil, errors.New("share token has no share id")
	}

	return claims, nil
}

func (s *shareTokenService) TTL() time.Duration {
	return s.ttl
}
