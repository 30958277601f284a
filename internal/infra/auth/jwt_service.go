package auth

import (
	"time"

	"gatekeeper/config"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration // Zero issues tokens that never expire.
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
// The signing secret comes from configuration and is fixed for the life of the service.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Token.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return newJWTService(cfg.Token, time.Now), nil
}

func newJWTService(tokenCfg config.TokenConfig, now func() time.Time) *jwtService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	}
	if tokenCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(tokenCfg.Issuer))
	}
	if tokenCfg.TTL > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	return &jwtService{
		secret: []byte(tokenCfg.Secret),
		issuer: tokenCfg.Issuer,
		ttl:    tokenCfg.TTL,
		now:    now,
		parser: jwt.NewParser(opts...),
	}
}

// Issue creates a signed token whose only application claim is the user id.
// Timestamps are embedded only when a TTL is configured.
func (s *jwtService) Issue(userID uuid.UUID) (string, error) {
	claims := service.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: s.issuer,
		},
	}
	if s.ttl > 0 {
		issuedAt := s.now()
		claims.IssuedAt = jwt.NewNumericDate(issuedAt)
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

// Verify parses and validates a token. The cause of a failure is never
// surfaced to the caller: every rejection is ErrInvalidToken.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	if tokenString == "" {
		return nil, domainerrors.ErrInvalidToken
	}

	claims := &service.Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domainerrors.ErrInvalidToken
	}

	if claims.UserID == uuid.Nil {
		return nil, domainerrors.ErrInvalidToken
	}

	return claims, nil
}
