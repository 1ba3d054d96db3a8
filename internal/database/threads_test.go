package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threadRowColumns = []string{"id", "listing_id", "host_id", "guest_id", "started_at"}

func TestCreateThread(t *testing.T) {
	tcases := []struct {
		name    string
		created bool
	}{
		{name: "new thread", created: true},
		{name: "existing thread", created: false},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			cols := append(append([]string{}, threadRowColumns...), "created")
			mock.ExpectQuery(sqlFragment("ON CONFLICT (listing_id, host_id, guest_id) DO NOTHING")).
				WithArgs(10, 1, 2, testNow).
				WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 10, 1, 2, testNow, tc.created))

			thread, created, err := repo.CreateThread(CreateThreadParams{ListingId: 10, HostId: 1, GuestId: 2})
			require.NoError(t, err)
			assert.Equal(t, tc.created, created)
			assert.Equal(t, Thread{Id: 5, ListingId: 10, HostId: 1, GuestId: 2, StartedAt: testNow}, thread)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateThread_Invalid(t *testing.T) {
	tcases := []struct {
		name   string
		params CreateThreadParams
	}{
		{name: "missing listing", params: CreateThreadParams{HostId: 1, GuestId: 2}},
		{name: "missing guest", params: CreateThreadParams{ListingId: 1, HostId: 1}},
		{name: "host is guest", params: CreateThreadParams{ListingId: 1, HostId: 3, GuestId: 3}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			_, _, err := repo.CreateThread(tc.params)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NoError(t, mock.ExpectationsWereMet(), "no statement should be issued")
		})
	}
}

func TestCreateThread_StoreErrors(t *testing.T) {
	t.Run("unknown listing", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("INSERT INTO message_threads")).
			WillReturnError(&pq.Error{Code: foreignKeyViolation, Constraint: "message_threads_listing_id_fkey"})

		_, _, err := repo.CreateThread(CreateThreadParams{ListingId: 99, HostId: 1, GuestId: 2})

		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "listing", nferr.Resource)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent insert", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("INSERT INTO message_threads")).
			WillReturnRows(sqlmock.NewRows(threadRowColumns))

		_, _, err := repo.CreateThread(CreateThreadParams{ListingId: 1, HostId: 1, GuestId: 2})

		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetThread(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM message_threads mt WHERE mt.id = $1")).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(threadRowColumns).AddRow(5, 10, 1, 2, testNow))

		thread, err := repo.GetThread(5)
		require.NoError(t, err)
		assert.Equal(t, 5, thread.Id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(sqlFragment("FROM message_threads mt WHERE mt.id = $1")).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(threadRowColumns))

		_, err := repo.GetThread(5)

		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "thread 5 not found", nferr.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetThreadsByRole(t *testing.T) {
	cols := append(append([]string{}, threadRowColumns...), "username")

	tcases := []struct {
		name string
		sql  string
		call func(*PgMarketplaceRepository) ([]Thread, error)
	}{
		{
			name: "host",
			sql:  "JOIN users u ON u.id = mt.guest_id WHERE mt.host_id = $1 ORDER BY mt.id",
			call: func(r *PgMarketplaceRepository) ([]Thread, error) { return r.GetThreadsForHost(1) },
		},
		{
			name: "guest",
			sql:  "JOIN users u ON u.id = mt.host_id WHERE mt.guest_id = $1 ORDER BY mt.id",
			call: func(r *PgMarketplaceRepository) ([]Thread, error) { return r.GetThreadsForGuest(1) },
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			mock.ExpectQuery(sqlFragment(tc.sql)).
				WithArgs(1).
				WillReturnRows(sqlmock.NewRows(cols).
					AddRow(5, 10, 1, 2, testNow, "bob").
					AddRow(6, 11, 1, 3, testNow, "carol"))

			threads, err := tc.call(repo)
			require.NoError(t, err)
			require.Len(t, threads, 2)
			assert.Equal(t, "bob", threads[0].CounterpartUsername)
			assert.Equal(t, "carol", threads[1].CounterpartUsername)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetAllThreadsForUser(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(sqlFragment("WHERE mt.host_id = $1 OR mt.guest_id = $1 ORDER BY mt.id")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(threadRowColumns).
			AddRow(5, 10, 1, 2, testNow).
			AddRow(7, 12, 2, 4, testNow))

	threads, err := repo.GetAllThreadsForUser(2)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Empty(t, threads[0].CounterpartUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllThreadsForUser_None(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(sqlFragment("FROM message_threads mt")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(threadRowColumns))

	threads, err := repo.GetAllThreadsForUser(2)
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetThreadsForHost_StorageFault(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(sqlFragment("FROM message_threads mt")).
		WillReturnError(errors.New("timeout"))

	_, err := repo.GetThreadsForHost(1)

	var fault *StorageFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "select threads", fault.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}
