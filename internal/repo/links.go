package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type linkRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Title     string `db:"title"`
	URL       string `db:"url"`
	CreatedAt Date   `db:"created_at"`
}

type LinksRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewLinksRepo(db *sql.DB) *LinksRepo {
	return &LinksRepo{db: db, now: time.Now}
}

// InsertLink assigns the link's ID and creation time and stores it. It returns
// internal.ErrNoRowInserted when the insert affects no rows.
func (r *LinksRepo) InsertLink(ctx context.Context, userID, title, url string) (*internal.Link, error) {
	row := linkRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: NewDate(r.now()),
	}

	log.Debug().Str("user_id", userID).Str("url", url).Msg("creating link")

	res, err := executor(r.db).Insert("links").Rows(row).Executor().ExecContext(ctx)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to create link")
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		log.Warn().Str("user_id", userID).Msg("link creation affected no rows")
		return nil, internal.ErrNoRowInserted
	}

	link := row.toDomain()
	return &link, nil
}

// ListLinks returns the owner's links within the inclusive row range [from, to],
// newest first, and the owner's total link count.
func (r *LinksRepo) ListLinks(ctx context.Context, userID string, from, to int) ([]internal.Link, int, error) {
	owned := executor(r.db).From("links").Where(goqu.Ex{"user_id": userID})

	total, err := owned.CountContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	var rows []linkRow
	err = owned.
		Select("id", "user_id", "title", "url", "created_at").
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Offset(uint(from)).
		Limit(uint(to - from + 1)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, 0, err
	}

	links := lo.Map(rows, func(row linkRow, _ int) internal.Link {
		return row.toDomain()
	})

	return links, int(total), nil
}

func (r *linkRow) toDomain() internal.Link {
	return internal.Link{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		URL:       r.URL,
		CreatedAt: r.CreatedAt.Time(),
	}
}
