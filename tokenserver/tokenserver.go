// Package tokenserver implements the companion token endpoint the anonymous
// and passcode strategies talk to: it mints short-lived room access tokens
// and optionally gates them behind a shared passcode.
package tokenserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/goliatone/go-appstate"
)

// DefaultTTL is the room token lifetime when none is configured.
const DefaultTTL = 4 * time.Hour

// Config holds token server options.
type Config struct {
	// SigningKey signs room access tokens. Required.
	SigningKey []byte

	// Issuer is stamped on every minted token.
	Issuer string

	// TTL is the token lifetime. Defaults to DefaultTTL.
	TTL time.Duration

	// Passcode, when set, gates the endpoint. PasscodeExpiresAt bounds its
	// validity; zero means it never expires.
	Passcode          string
	PasscodeExpiresAt time.Time

	// Debug enables pretty request dumps through the logger.
	Debug bool

	Logger appstate.Logger
}

// Server mints room access tokens behind a fiber route.
type Server struct {
	config Config
	logger appstate.Logger
}

// New validates the configuration and creates a Server.
func New(cfg Config) (*Server, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, goerrors.New("signing key is required", goerrors.CategoryBadInput)
	}

	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Server{
		config: cfg,
		logger: logger,
	}, nil
}

// Register mounts the token routes on the given app.
func (s *Server) Register(app *fiber.App) {
	app.Get("/token", s.handleFetch)
	app.Post("/token", s.handleMint)
}

// handleFetch serves the anonymous strategy: query parameters in, the token
// as plain text out.
func (s *Server) handleFetch(c *fiber.Ctx) error {
	req := mintRequest{
		Identity: c.Query("identity"),
		RoomName: c.Query("roomName"),
		Passcode: c.Query("passcode"),
	}

	token, err := s.mint(req)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.SendString(token)
}

// handleMint serves the passcode strategy: JSON body in, JSON payload out.
func (s *Server) handleMint(c *fiber.Ctx) error {
	var body struct {
		UserIdentity string `json:"user_identity"`
		RoomName     string `json:"room_name"`
		Passcode     string `json:"passcode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return s.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body"))
	}

	token, err := s.mint(mintRequest{
		Identity: body.UserIdentity,
		RoomName: body.RoomName,
		Passcode: body.Passcode,
	})
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(fiber.Map{"token": token, "room_type": "group"})
}

type mintRequest struct {
	Identity string
	RoomName string
	Passcode string
}

func (s *Server) mint(req mintRequest) (string, error) {
	if s.config.Debug {
		s.logger.Debug("token request: %s", print.MaybePrettyJSON(req))
	}

	if err := s.checkPasscode(req.Passcode); err != nil {
		return "", err
	}

	if req.Identity == "" {
		return "", goerrors.New("identity is required", goerrors.CategoryBadInput)
	}
	if req.RoomName == "" {
		return "", goerrors.New("room name is required", goerrors.CategoryBadInput)
	}

	return s.sign(req.Identity, req.RoomName)
}

func (s *Server) checkPasscode(passcode string) error {
	if s.config.Passcode == "" {
		return nil
	}

	expires := s.config.PasscodeExpiresAt
	if !expires.IsZero() && time.Now().After(expires) {
		return goerrors.New("passcode expired", goerrors.CategoryAuth)
	}

	if passcode != s.config.Passcode {
		return goerrors.New("passcode incorrect", goerrors.CategoryAuth)
	}

	return nil
}

// roomClaims is the shape of a minted room access token.
type roomClaims struct {
	jwt.RegisteredClaims
	Grants roomGrants `json:"grants"`
}

type roomGrants struct {
	Identity string     `json:"identity"`
	Video    videoGrant `json:"video"`
}

type videoGrant struct {
	Room string `json:"room"`
}

func (s *Server) sign(identity, roomName string) (string, error) {
	now := time.Now()
	claims := &roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
		Grants: roomGrants{
			Identity: identity,
			Video:    videoGrant{Room: roomName},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.config.SigningKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign room token")
	}

	return signed, nil
}

func (s *Server) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		message = richErr.Message
		switch richErr.Category {
		case goerrors.CategoryBadInput, goerrors.CategoryValidation:
			status = fiber.StatusBadRequest
		case goerrors.CategoryAuth:
			status = fiber.StatusUnauthorized
		}
	}

	s.logger.Error("token request rejected: %v", err)

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"message": message},
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
