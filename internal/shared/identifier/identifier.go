package identifier

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"go-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

// MaxAttempts caps how many candidates a caller may try before giving up
// with a conflict error. Collisions on a 6-digit space are rare until the
// table is nearly full, so a small cap is enough.
const MaxAttempts = 5

const alphanumerics = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var ErrExhausted = apperror.New(
	apperror.CodeConflict,
	"could not allocate a unique identifier",
	http.StatusConflict,
)

// Numeric returns a random 6-digit identifier in [100000, 999999].
func Numeric() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}

// Alphanumeric returns a random identifier of length n drawn from
// uppercase letters and digits.
func Alphanumeric(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(alphanumerics)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteByte(alphanumerics[idx.Int64()])
	}
	return b.String()
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation. Allocation relies on the constraint rather than a pre-check
// query: two concurrent submitters may draw the same candidate, and only
// the database can decide who wins.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

// InsertWithRetry draws fresh candidates and calls insert until one sticks,
// retrying only on unique violations. Any other error is returned as-is.
func InsertWithRetry(ctx context.Context, gen func() string, insert func(ctx context.Context, id string) error) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		id := gen()
		err := insert(ctx, id)
		if err == nil {
			return id, nil
		}
		if !IsUniqueViolation(err) {
			return "", err
		}
	}
	return "", ErrExhausted
}
