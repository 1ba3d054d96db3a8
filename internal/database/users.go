package database

import (
	"database/sql"
	"errors"
	"strings"
)

func (db *PgMarketplaceRepository) CreateUser(params CreateUserParams) (User, error) {
	if strings.TrimSpace(params.Username) == "" || strings.TrimSpace(params.EmailAddress) == "" {
		return User{}, validationErrorf("username and email are required")
	}
	if params.PasswordHash == "" {
		return User{}, validationErrorf("password is required")
	}

	row := db.conn.QueryRow(
		"INSERT INTO users (username, first_name, last_name, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, username, first_name, last_name, email, is_admin, created_at",
		strings.TrimSpace(params.Username),
		params.FirstName,
		params.LastName,
		strings.TrimSpace(params.EmailAddress),
		params.PasswordHash,
		now(),
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.EmailAddress,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		return User{}, storeError("create user", err)
	}

	return u, nil
}

func (db *PgMarketplaceRepository) GetUserById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, first_name, last_name, email, is_admin, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.EmailAddress,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, &NotFoundError{Resource: "user", Key: id}
		}
		return User{}, storeError("get user", err)
	}

	return u, nil
}

// GetUserByUsername also loads the password hash for login.
func (db *PgMarketplaceRepository) GetUserByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, first_name, last_name, email, password_hash, is_admin, created_at FROM users "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, &NotFoundError{Resource: "user", Key: username}
		}
		return User{}, storeError("get user", err)
	}

	return u, nil
}
