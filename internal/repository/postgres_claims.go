package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Claims carry two uniqueness constraints; violation of either is caught
// at the store even if a caller bypasses the seat lock.
const (
	constraintOneActivePerSeat = "claims_one_active_per_seat"
	constraintOneClaimPerUser  = "claims_user_seat_uniq"
)

// seatLockTimeout bounds how long a transaction waits for a seat's
// advisory lock before giving up with ErrSeatContention.
const seatLockTimeout = "3s"

type PostgresClaimRepository struct {
	db *pgxpool.Pool
}

func NewPostgresClaimRepository(db *pgxpool.Pool) *PostgresClaimRepository {
	return &PostgresClaimRepository{
		db: db,
	}
}

// WithSeatTx serializes all claim reads and writes for one
// (showtime, coordinate) pair. The pair is mapped to a transaction-scoped
// advisory lock, so concurrent submissions on the same seat queue up while
// operations on other seats proceed untouched. The lock wait is bounded by
// lock_timeout; exceeding it surfaces as domain.ErrSeatContention.
func (p *PostgresClaimRepository) WithSeatTx(
	ctx context.Context,
	showtimeID int,
	seat domain.Coordinate,
	fn func(tx domain.ClaimTx) error,
) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", seatLockTimeout))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", seatLockID(showtimeID, seat))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.LockNotAvailable {
				return domain.ErrSeatContention
			}

			return err
		}

		return fn(&claimTx{tx: tx, showtimeID: showtimeID, seat: seat})
	})
}

// seatLockID hashes a (showtime, coordinate) pair into the 64-bit advisory
// lock keyspace.
func seatLockID(showtimeID int, seat domain.Coordinate) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "seat:%d:%d:%d", showtimeID, seat.Row, seat.Col)

	return int64(h.Sum64())
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// claimTx is the locked view of a single seat's claim set.
type claimTx struct {
	tx         pgx.Tx
	showtimeID int
	seat       domain.Coordinate
}

func (c *claimTx) ClaimsBySeat(ctx context.Context) (*domain.SeatClaims, error) {
	query := `
		SELECT id, ref, showtime_id, seat_row, seat_col, user_id, status, created_at
		FROM claims
		WHERE showtime_id = $1 AND seat_row = $2 AND seat_col = $3
		ORDER BY created_at, id
	`

	rows, err := c.tx.Query(ctx, query, c.showtimeID, c.seat.Row, c.seat.Col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatClaims := &domain.SeatClaims{Reserved: make([]domain.Claim, 0)}

	for rows.Next() {
		var claim domain.Claim

		err = rows.Scan(
			&claim.ID,
			&claim.Ref,
			&claim.ShowtimeID,
			&claim.Seat.Row,
			&claim.Seat.Col,
			&claim.UserID,
			&claim.Status,
			&claim.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if claim.Status == domain.ClaimActive {
			active := claim
			seatClaims.Active = &active
		} else {
			seatClaims.Reserved = append(seatClaims.Reserved, claim)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seatClaims, nil
}

func (c *claimTx) Create(ctx context.Context, claim *domain.Claim) error {
	query := `
		INSERT INTO claims (ref, showtime_id, seat_row, seat_col, user_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := c.tx.QueryRow(
		ctx,
		query,
		claim.Ref,
		claim.ShowtimeID,
		claim.Seat.Row,
		claim.Seat.Col,
		claim.UserID,
		claim.Status,
	).Scan(&claim.ID, &claim.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case constraintOneActivePerSeat:
				return domain.ErrClaimConflict
			case constraintOneClaimPerUser:
				return domain.ErrDuplicateClaim
			}
		}

		return err
	}

	return nil
}

func (c *claimTx) Delete(ctx context.Context, claimID int) error {
	return deleteClaim(ctx, c.tx, claimID)
}

func (p *PostgresClaimRepository) Delete(ctx context.Context, claimID int) error {
	return deleteClaim(ctx, p.db, claimID)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func deleteClaim(ctx context.Context, db execer, claimID int) error {
	tag, err := db.Exec(ctx, "DELETE FROM claims WHERE id = $1", claimID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresClaimRepository) GetByRef(ctx context.Context, ref uuid.UUID) (*domain.Claim, error) {
	query := `
		SELECT id, ref, showtime_id, seat_row, seat_col, user_id, status, created_at
		FROM claims
		WHERE ref = $1
	`

	var claim domain.Claim

	err := p.db.QueryRow(ctx, query, ref).Scan(
		&claim.ID,
		&claim.Ref,
		&claim.ShowtimeID,
		&claim.Seat.Row,
		&claim.Seat.Col,
		&claim.UserID,
		&claim.Status,
		&claim.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &claim, nil
}

func (p *PostgresClaimRepository) ClaimsByUser(ctx context.Context, userID, showtimeID int) ([]domain.Claim, error) {
	query := `
		SELECT id, ref, showtime_id, seat_row, seat_col, user_id, status, created_at
		FROM claims
		WHERE user_id = $1 AND ($2 = 0 OR showtime_id = $2)
		ORDER BY created_at, id
	`

	rows, err := p.db.Query(ctx, query, userID, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]domain.Claim, 0)

	for rows.Next() {
		var claim domain.Claim

		err = rows.Scan(
			&claim.ID,
			&claim.Ref,
			&claim.ShowtimeID,
			&claim.Seat.Row,
			&claim.Seat.Col,
			&claim.UserID,
			&claim.Status,
			&claim.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		claims = append(claims, claim)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return claims, nil
}

func (p *PostgresClaimRepository) ActiveSeatsByShowtime(ctx context.Context, showtimeID int) ([]domain.Coordinate, error) {
	query := `
		SELECT seat_row, seat_col
		FROM claims
		WHERE showtime_id = $1 AND status = 'ACTIVE'
		ORDER BY seat_row, seat_col
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Coordinate, 0)

	for rows.Next() {
		var seat domain.Coordinate

		err = rows.Scan(&seat.Row, &seat.Col)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
