package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"sentinel/config"
	"sentinel/internal/domain/entity"
	"sentinel/internal/domain/service"
	"sentinel/internal/errors"
)

const (
	minSecretBytes       = 32
	generatedSecretBytes = 64
)

// JWTServiceParams holds the dependencies of the token issuer.
type JWTServiceParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// The signing secret is fixed at construction and shared read-only by all requests.
type jwtService struct {
	secret     []byte        // HMAC key for both token types.
	issuer     string        // Optional iss claim; enforced on validation when set.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
	now        func() time.Time
	parser     *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
// Without a configured secret it generates one for the lifetime of the process,
// which means a restart invalidates every token issued before it.
func NewJWTService(params JWTServiceParams) (service.TokenService, error) {
	jwtCfg := params.Config.JWT
	if jwtCfg == nil {
		return nil, errors.New("jwt configuration must be provided")
	}

	secret := []byte(jwtCfg.Secret)
	switch {
	case len(secret) == 0:
		generated, err := randomBytes(generatedSecretBytes)
		if err != nil {
			return nil, errors.Wrap(err, "generate jwt signing secret")
		}
		secret = generated
		params.Logger.Warn("jwt.secret is not configured, using a per-process signing secret; tokens will not survive a restart")
	case len(secret) < minSecretBytes:
		return nil, errors.Errorf("jwt secret must be at least %d bytes", minSecretBytes)
	}

	return NewJWTServiceWithSecret(secret, jwtCfg.Issuer, jwtCfg.AccessTokenTTL, jwtCfg.RefreshTokenTTL, time.Now), nil
}

// NewJWTServiceWithSecret builds an issuer from explicit values.
func NewJWTServiceWithSecret(secret []byte, issuer string, accessTTL, refreshTTL time.Duration, now func() time.Time) service.TokenService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &jwtService{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		parser:     jwt.NewParser(opts...),
	}
}

// GenerateAccessToken creates an access token carrying email and role for stateless authorization.
func (s *jwtService) GenerateAccessToken(userID uuid.UUID, email string, role entity.Role) (string, error) {
	claims := s.newClaims(userID, service.TokenTypeAccess, s.accessTTL)
	claims.Email = email
	claims.Role = role

	return s.sign(claims)
}

// GenerateRefreshToken creates a refresh token. The random jti keeps two tokens
// minted in the same second distinct, so their digests never collide in the ledger.
func (s *jwtService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.sign(s.newClaims(userID, service.TokenTypeRefresh, s.refreshTTL))
}

// ValidateToken checks the signature, algorithm and expiry of a token string.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(service.ErrTokenExpired, err.Error())
		}

		return nil, errors.Wrap(service.ErrTokenMalformed, err.Error())
	}

	if !token.Valid || claims.Subject == "" {
		return nil, service.ErrTokenMalformed
	}
	if claims.Type != service.TokenTypeAccess && claims.Type != service.TokenTypeRefresh {
		return nil, errors.Wrapf(service.ErrTokenMalformed, "unknown token type %q", claims.Type)
	}

	return claims, nil
}

// HashToken returns the hex SHA-256 digest of a token.
func (s *jwtService) HashToken(token string) string {
	return HashToken(token)
}

// GetAccessTokenDuration returns the configured duration for access tokens.
func (s *jwtService) GetAccessTokenDuration() time.Duration {
	return s.accessTTL
}

// GetRefreshTokenDuration returns the configured duration for refresh tokens.
func (s *jwtService) GetRefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) newClaims(userID uuid.UUID, tokenType string, ttl time.Duration) *service.Claims {
	now := s.now()

	return &service.Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (s *jwtService) sign(claims *service.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign jwt")
	}

	return signed, nil
}

// HashToken returns the hex SHA-256 digest used to store tokens without keeping them in plaintext.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
