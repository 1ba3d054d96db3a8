package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "first_name", "last_name", "email", "is_admin", "created_at"}

func TestCreateUser(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(sqlFragment("INSERT INTO users (username, first_name, last_name, email, password_hash, created_at)")).
		WithArgs("ana", "Ana", "Silva", "ana@example.com", "hash", testNow).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "ana", "Ana", "Silva", "ana@example.com", false, testNow))

	u, err := repo.CreateUser(CreateUserParams{
		Username:     " ana ",
		FirstName:    "Ana",
		LastName:     "Silva",
		EmailAddress: "ana@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, User{
		Id:           1,
		Username:     "ana",
		FirstName:    "Ana",
		LastName:     "Silva",
		EmailAddress: "ana@example.com",
		CreatedAt:    testNow,
	}, u)
	assert.Empty(t, u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Invalid(t *testing.T) {
	tcases := []struct {
		name   string
		params CreateUserParams
	}{
		{name: "no username", params: CreateUserParams{EmailAddress: "a@b.c", PasswordHash: "x"}},
		{name: "no email", params: CreateUserParams{Username: "ana", PasswordHash: "x"}},
		{name: "no password", params: CreateUserParams{Username: "ana", EmailAddress: "a@b.c"}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			_, err := repo.CreateUser(tc.params)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(sqlFragment("INSERT INTO users")).
		WillReturnError(&pq.Error{
			Code:       uniqueViolation,
			Constraint: "users_username_key",
			Detail:     "Key (username)=(ana) already exists.",
		})

	_, err := repo.CreateUser(CreateUserParams{Username: "ana", EmailAddress: "a@b.c", PasswordHash: "x"})

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "user conflict: Key (username)=(ana) already exists.", cerr.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserById(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM users WHERE id = $1 LIMIT 1")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(1, "ana", "Ana", "Silva", "ana@example.com", true, testNow))

		u, err := repo.GetUserById(1)
		require.NoError(t, err)
		assert.Equal(t, "ana", u.Username)
		assert.True(t, u.IsAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM users WHERE id = $1")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.GetUserById(1)

		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByUsername(t *testing.T) {
	cols := []string{"id", "username", "first_name", "last_name", "email", "password_hash", "is_admin", "created_at"}

	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM users WHERE username = $1 LIMIT 1")).
			WithArgs("ana").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(1, "ana", "Ana", "Silva", "ana@example.com", "hash", false, testNow))

		u, err := repo.GetUserByUsername("ana")
		require.NoError(t, err)
		assert.Equal(t, "hash", u.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM users WHERE username = $1")).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetUserByUsername("nobody")

		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "user nobody not found", nferr.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
