package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

type UserDTO struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	CreatedAt         time.Time `json:"createdAt"`
	TotalScore        int64     `json:"totalScore"`
	GamesPlayed       int64     `json:"gamesPlayed"`
	BalloonsPlaced    int64     `json:"balloonsPlaced"`
	PowerupsCollected int64     `json:"powerupsCollected"`
}

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidLogin       = errors.New("invalid login")
	ErrUserNotFound       = errors.New("user not found")
)

type IUserService interface {
	Register(ctx context.Context, username, password string) (*UserDTO, error)
	Authenticate(ctx context.Context, username, password string) (*UserDTO, error)
	GetUser(ctx context.Context, id int64) (*UserDTO, error)
	IncrementGamesPlayed(ctx context.Context, id int64) error
}

type userService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) IUserService {
	return &userService{db: db}
}

// EnsureSchema creates the users table if it is missing. Cumulative stats
// columns are written by the stats synchroniser, not by this service.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
	    id                 BIGSERIAL PRIMARY KEY,
	    username           VARCHAR(32) UNIQUE NOT NULL,
	    password_hash      VARCHAR(255) NOT NULL,
	    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	    total_score        BIGINT NOT NULL DEFAULT 0,
	    games_played       BIGINT NOT NULL DEFAULT 0,
	    balloons_placed    BIGINT NOT NULL DEFAULT 0,
	    powerups_collected BIGINT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS score_events (
	    id        BIGSERIAL PRIMARY KEY,
	    user_id   BIGINT NOT NULL,
	    delta     BIGINT NOT NULL,
	    scored_at TIMESTAMPTZ NOT NULL
	)`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func (svc *userService) Register(ctx context.Context, username, password string) (*UserDTO, error) {
	username = normalizeUsername(username)
	password = strings.TrimSpace(password)
	if len(username) < 3 || len(password) < 6 {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	dto := &UserDTO{Username: username}
	const ins = `INSERT INTO users (username, password_hash)
	             VALUES ($1, $2) RETURNING id, created_at`
	err = svc.db.QueryRowContext(ctx, ins, username, string(hash)).
		Scan(&dto.ID, &dto.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return dto, nil
}

func (svc *userService) Authenticate(ctx context.Context, username, password string) (*UserDTO, error) {
	username = normalizeUsername(username)

	var hash string
	dto := &UserDTO{}
	const q = `SELECT id, username, password_hash, created_at,
	                  total_score, games_played, balloons_placed, powerups_collected
	             FROM users WHERE username = $1`
	err := svc.db.QueryRowContext(ctx, q, username).Scan(
		&dto.ID, &dto.Username, &hash, &dto.CreatedAt,
		&dto.TotalScore, &dto.GamesPlayed, &dto.BalloonsPlaced, &dto.PowerupsCollected,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(password))) != nil {
		return nil, ErrInvalidLogin
	}
	return dto, nil
}

func (svc *userService) GetUser(ctx context.Context, id int64) (*UserDTO, error) {
	dto := &UserDTO{}
	const q = `SELECT id, username, created_at,
	                  total_score, games_played, balloons_placed, powerups_collected
	             FROM users WHERE id = $1`
	err := svc.db.QueryRowContext(ctx, q, id).Scan(
		&dto.ID, &dto.Username, &dto.CreatedAt,
		&dto.TotalScore, &dto.GamesPlayed, &dto.BalloonsPlaced, &dto.PowerupsCollected,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *userService) IncrementGamesPlayed(ctx context.Context, id int64) error {
	_, err := svc.db.ExecContext(ctx,
		`UPDATE users SET games_played = games_played + 1 WHERE id = $1`, id)
	return err
}

func normalizeUsername(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	// Cap in runes, not bytes, so a multi-byte character is never split
	// into invalid UTF-8.
	if r := []rune(u); len(r) > 32 {
		u = string(r[:32])
	}
	return u
}
