package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/npezzotti/go-hostly/internal/query"
)

const listingColumns = "l.id, l.name, l.price, l.zipcode, l.capacity, l.description, l.amenities, l.photo_url, l.host_id"

var listingFilters = query.MustPredicateSet(
	[]query.Predicate{
		{Key: "minPrice", Column: "l.price", Op: query.OpGte},
		{Key: "maxPrice", Column: "l.price", Op: query.OpLte},
		{Key: "minCapacity", Column: "l.capacity", Op: query.OpGte, Integer: true},
		{Key: "maxCapacity", Column: "l.capacity", Op: query.OpLte, Integer: true},
		{Key: "zipcode", Column: "l.zipcode", Op: query.OpEq},
		{Key: "hostId", Column: "l.host_id", Op: query.OpEq, Integer: true},
		{Key: "nameLike", Column: "l.name", Op: query.OpContains},
	},
	query.Bound{Min: "minPrice", Max: "maxPrice"},
	query.Bound{Min: "minCapacity", Max: "maxCapacity"},
)

var listingColumnMap = query.MustColumnMap(
	query.Column{Field: "name"},
	query.Column{Field: "price"},
	query.Column{Field: "zipcode"},
	query.Column{Field: "capacity"},
	query.Column{Field: "description"},
	query.Column{Field: "amenities"},
	query.Column{Field: "photoUrl", Name: "photo_url"},
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner, l *Listing) error {
	return row.Scan(
		&l.Id,
		&l.Name,
		&l.Price,
		&l.Zipcode,
		&l.Capacity,
		&l.Description,
		&l.Amenities,
		&l.PhotoUrl,
		&l.HostId,
	)
}

func (db *PgMarketplaceRepository) CreateListing(params CreateListingParams) (Listing, error) {
	if err := validateListingParams(params); err != nil {
		return Listing{}, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO listings AS l (name, price, zipcode, capacity, description, amenities, photo_url, host_id) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+listingColumns,
		strings.TrimSpace(params.Name),
		params.Price,
		strings.TrimSpace(params.Zipcode),
		params.Capacity,
		params.Description,
		params.Amenities,
		params.PhotoUrl,
		params.HostId,
	)

	var l Listing
	if err := scanListing(row, &l); err != nil {
		return Listing{}, storeError("create listing", err)
	}

	return l, nil
}

func validateListingParams(params CreateListingParams) error {
	var missing []string
	if strings.TrimSpace(params.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(params.Zipcode) == "" {
		missing = append(missing, "zipcode")
	}
	if params.HostId <= 0 {
		missing = append(missing, "hostId")
	}
	if len(missing) > 0 {
		return validationErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if params.Price <= 0 {
		return validationErrorf("price must be a positive number")
	}
	if params.Capacity <= 0 {
		return validationErrorf("capacity must be a positive integer")
	}

	return nil
}

func (db *PgMarketplaceRepository) FindAllListings() ([]Listing, error) {
	return db.FindListings(nil)
}

// FindListings returns the listings matching filters ordered by zipcode.
// Empty filters match every listing.
func (db *PgMarketplaceRepository) FindListings(filters query.Filters) ([]Listing, error) {
	where, args, err := listingFilters.Build(filters)
	if err != nil {
		return nil, err
	}

	return db.selectListings(where, args)
}

func (db *PgMarketplaceRepository) SearchListings(term string) ([]Listing, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, validationErrorf("search term cannot be empty")
	}

	where, args, err := listingFilters.Build(query.Filters{"nameLike": term})
	if err != nil {
		return nil, err
	}

	listings, err := db.selectListings(where, args)
	if err != nil {
		return nil, err
	}

	if len(listings) == 0 {
		return nil, &NotFoundError{Resource: "listing", Key: fmt.Sprintf("matching %q", term)}
	}

	return listings, nil
}

func (db *PgMarketplaceRepository) selectListings(where string, args []any) ([]Listing, error) {
	parts := []string{"SELECT " + listingColumns + " FROM listings l"}
	if where != "" {
		parts = append(parts, where)
	}
	parts = append(parts, "ORDER BY l.zipcode, l.id")

	rows, err := db.conn.Query(strings.Join(parts, " "), args...)
	if err != nil {
		return nil, storeError("select listings", err)
	}
	defer rows.Close()

	listings := make([]Listing, 0)
	for rows.Next() {
		var l Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, storeError("scan listing", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("select listings", err)
	}

	return listings, nil
}

func (db *PgMarketplaceRepository) GetListing(id int) (Listing, error) {
	row := db.conn.QueryRow(
		"SELECT "+listingColumns+", u.username, u.first_name, u.last_name "+
			"FROM listings l JOIN users u ON u.id = l.host_id "+
			"WHERE l.id = $1",
		id,
	)

	var (
		l    Listing
		host PublicProfile
	)
	err := row.Scan(
		&l.Id,
		&l.Name,
		&l.Price,
		&l.Zipcode,
		&l.Capacity,
		&l.Description,
		&l.Amenities,
		&l.PhotoUrl,
		&l.HostId,
		&host.Username,
		&host.FirstName,
		&host.LastName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, &NotFoundError{Resource: "listing", Key: id}
		}
		return Listing{}, storeError("get listing", err)
	}

	l.Host = &host
	return l, nil
}

// UpdateListing changes only the fields present in changes.
func (db *PgMarketplaceRepository) UpdateListing(id int, changes query.Changes) (Listing, error) {
	changes, err := normalizeListingChanges(changes)
	if err != nil {
		return Listing{}, err
	}

	sets, args, err := listingColumnMap.Build(changes)
	if err != nil {
		return Listing{}, err
	}

	q := fmt.Sprintf(
		"UPDATE listings AS l SET %s WHERE l.id = $%d RETURNING %s",
		sets,
		len(args)+1,
		listingColumns,
	)
	args = append(args, id)

	var l Listing
	if err := scanListing(db.conn.QueryRow(q, args...), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, &NotFoundError{Resource: "listing", Key: id}
		}
		return Listing{}, storeError("update listing", err)
	}

	return l, nil
}

func normalizeListingChanges(changes query.Changes) (query.Changes, error) {
	out := make(query.Changes, 0, len(changes))
	for _, a := range changes {
		switch a.Field {
		case "price":
			f, err := query.ToFloat(a.Value)
			if err != nil || f <= 0 {
				return nil, validationErrorf("price must be a positive number")
			}
			a.Value = f
		case "capacity":
			n, err := query.ToInt(a.Value)
			if err != nil || n <= 0 {
				return nil, validationErrorf("capacity must be a positive integer")
			}
			a.Value = n
		case "name", "zipcode":
			s, ok := a.Value.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, validationErrorf("%s cannot be empty", a.Field)
			}
			a.Value = strings.TrimSpace(s)
		case "description", "amenities", "photoUrl":
			if _, ok := a.Value.(string); !ok {
				return nil, validationErrorf("%s must be text", a.Field)
			}
		}
		out = append(out, a)
	}

	return out, nil
}

func (db *PgMarketplaceRepository) DeleteListing(id int) error {
	res, err := db.conn.Exec("DELETE FROM listings WHERE id = $1", id)
	if err != nil {
		return storeError("delete listing", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeError("delete listing", err)
	}
	if n == 0 {
		return &NotFoundError{Resource: "listing", Key: id}
	}

	return nil
}
