package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/quota-settlement/internal/model"
)

var ErrNoLogo = errors.New("company has no logo")

type LogoRepository struct {
	pool *pgxpool.Pool
}

func NewLogoRepository(pool *pgxpool.Pool) *LogoRepository {
	return &LogoRepository{pool: pool}
}

// GetLogo returns the company logo with its sniffed MIME type, or ErrNoLogo
// when none is stored.
func (r *LogoRepository) GetLogo(ctx context.Context, companyID string) (*model.Logo, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT logo FROM companies WHERE id = $1`, companyID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoLogo
	}
	if err != nil {
		return nil, err
	}
	return DetectLogo(data)
}

// DetectLogo wraps raw image bytes, keeping only image types.
func DetectLogo(data []byte) (*model.Logo, error) {
	if len(data) == 0 {
		return nil, ErrNoLogo
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("logo is not an image: %s", mt.String())
	}
	return &model.Logo{Data: data, MimeType: mt.String()}, nil
}
