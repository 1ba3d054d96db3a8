package database

import (
	"database/sql"
	"errors"
)

const threadColumns = "mt.id, mt.listing_id, mt.host_id, mt.guest_id, mt.started_at"

// createThreadQuery inserts the thread unless the (listing, host, guest)
// triple already has one, in which case the existing row is returned. The
// unique constraint makes this a single atomic step.
const createThreadQuery = `
WITH inserted AS (
	INSERT INTO message_threads AS mt (listing_id, host_id, guest_id, started_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (listing_id, host_id, guest_id) DO NOTHING
	RETURNING ` + threadColumns + `
)
SELECT id, listing_id, host_id, guest_id, started_at, TRUE FROM inserted
UNION ALL
SELECT ` + threadColumns + `, FALSE FROM message_threads mt
WHERE mt.listing_id = $1 AND mt.host_id = $2 AND mt.guest_id = $3
LIMIT 1`

func scanThread(row rowScanner, t *Thread, extra ...any) error {
	dest := []any{
		&t.Id,
		&t.ListingId,
		&t.HostId,
		&t.GuestId,
		&t.StartedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// CreateThread returns the thread for the given triple and whether this call
// created it.
func (db *PgMarketplaceRepository) CreateThread(params CreateThreadParams) (Thread, bool, error) {
	if params.ListingId <= 0 || params.HostId <= 0 || params.GuestId <= 0 {
		return Thread{}, false, validationErrorf("listingId, hostId and guestId are required")
	}
	if params.HostId == params.GuestId {
		return Thread{}, false, validationErrorf("host and guest must be different users")
	}

	row := db.conn.QueryRow(
		createThreadQuery,
		params.ListingId,
		params.HostId,
		params.GuestId,
		now(),
	)

	var (
		t       Thread
		created bool
	)
	if err := scanThread(row, &t, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// a concurrent insert committed between the two halves
			return Thread{}, false, &ConflictError{
				Resource: "thread",
				Message:  "thread is being created concurrently",
			}
		}
		return Thread{}, false, storeError("create thread", err)
	}

	return t, created, nil
}

func (db *PgMarketplaceRepository) GetThread(id int) (Thread, error) {
	row := db.conn.QueryRow(
		"SELECT "+threadColumns+" FROM message_threads mt WHERE mt.id = $1",
		id,
	)

	var t Thread
	if err := scanThread(row, &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Thread{}, &NotFoundError{Resource: "thread", Key: id}
		}
		return Thread{}, storeError("get thread", err)
	}

	return t, nil
}

// GetThreadsForHost returns the threads hosted by userId, each carrying the
// guest's username.
func (db *PgMarketplaceRepository) GetThreadsForHost(userId int) ([]Thread, error) {
	return db.selectThreads(
		"SELECT "+threadColumns+", u.username FROM message_threads mt "+
			"JOIN users u ON u.id = mt.guest_id "+
			"WHERE mt.host_id = $1 ORDER BY mt.id",
		userId,
		true,
	)
}

// GetThreadsForGuest returns the threads where userId is the guest, each
// carrying the host's username.
func (db *PgMarketplaceRepository) GetThreadsForGuest(userId int) ([]Thread, error) {
	return db.selectThreads(
		"SELECT "+threadColumns+", u.username FROM message_threads mt "+
			"JOIN users u ON u.id = mt.host_id "+
			"WHERE mt.guest_id = $1 ORDER BY mt.id",
		userId,
		true,
	)
}

func (db *PgMarketplaceRepository) GetAllThreadsForUser(userId int) ([]Thread, error) {
	return db.selectThreads(
		"SELECT "+threadColumns+" FROM message_threads mt "+
			"WHERE mt.host_id = $1 OR mt.guest_id = $1 ORDER BY mt.id",
		userId,
		false,
	)
}

func (db *PgMarketplaceRepository) selectThreads(q string, userId int, withCounterpart bool) ([]Thread, error) {
	rows, err := db.conn.Query(q, userId)
	if err != nil {
		return nil, storeError("select threads", err)
	}
	defer rows.Close()

	threads := make([]Thread, 0)
	for rows.Next() {
		var (
			t     Thread
			extra []any
		)
		if withCounterpart {
			extra = append(extra, &t.CounterpartUsername)
		}
		if err := scanThread(rows, &t, extra...); err != nil {
			return nil, storeError("scan thread", err)
		}
		threads = append(threads, t)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("select threads", err)
	}

	return threads, nil
}
