package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"innerAtlasAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = $3, username = $4, first_name = $5, last_name = $6, image_url = $7, updated_at = $9
	`
	_, err := s.db.Exec(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.ImageURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, fcm_token, last_reminded_date, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`
	u := &user.User{}
	var lastReminded *time.Time
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.FCMToken, &lastReminded, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if lastReminded != nil {
		formatted := lastReminded.Format("2006-01-02")
		u.LastRemindedDate = &formatted
	}

	return u, nil
}

func (s *UserService) UpdateUserByClerkID(ctx context.Context, clerkID string, req *user.UpdateUserRequest) error {
	sets := []string{}
	args := []interface{}{clerkID}
	add := func(col string, val *string) {
		if val != nil {
			args = append(args, *val)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("email", req.Email)
	add("username", req.Username)
	add("first_name", req.FirstName)
	add("last_name", req.LastName)
	add("image_url", req.ImageURL)
	if len(sets) == 0 {
		return nil
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	query := fmt.Sprintf("UPDATE users SET %s WHERE clerk_id = $1", strings.Join(sets, ", "))
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// RegisterDevice stores the FCM token used for journaling reminders.
func (s *UserService) RegisterDevice(ctx context.Context, clerkID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token", "must not be empty")
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET fcm_token = $1, updated_at = $2 WHERE clerk_id = $3`,
		token, time.Now().UTC(), clerkID,
	)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReminderTarget is one user due for today's journaling nudge.
type ReminderTarget struct {
	ClerkID  string
	FCMToken string
}

// UsersNeedingReminder returns users with a registered device who have not
// logged a dream today and have not already been nudged today.
func (s *UserService) UsersNeedingReminder(ctx context.Context, today string) ([]ReminderTarget, error) {
	query := `
	SELECT u.clerk_id, u.fcm_token
	FROM users u
	WHERE u.fcm_token IS NOT NULL
	  AND (u.last_reminded_date IS NULL OR u.last_reminded_date < $1)
	  AND NOT EXISTS (
		SELECT 1 FROM dreams d WHERE d.user_id = u.clerk_id AND d.dream_date = $1
	  )
	`
	rows, err := s.db.Query(ctx, query, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder targets: %w", err)
	}
	defer rows.Close()

	targets := []ReminderTarget{}
	for rows.Next() {
		var t ReminderTarget
		if err := rows.Scan(&t.ClerkID, &t.FCMToken); err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query reminder targets: %w", err)
	}

	return targets, nil
}

func (s *UserService) MarkReminded(ctx context.Context, clerkID, today string) error {
	if _, err := s.db.Exec(ctx,
		`UPDATE users SET last_reminded_date = $1 WHERE clerk_id = $2`, today, clerkID,
	); err != nil {
		return fmt.Errorf("failed to mark user reminded: %w", err)
	}
	return nil
}
