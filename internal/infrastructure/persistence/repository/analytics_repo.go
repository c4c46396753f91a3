package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// AnalyticsRepository implements the cost-analysis read models with SQL
// aggregates. Every query is scoped to one user's rows.
type AnalyticsRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *sqlite.DB, logger *zap.Logger) port.AnalyticsRepository {
	return &AnalyticsRepository{db: db, logger: logger}
}

// SpendSummary aggregates a user's purchasing over an inclusive date range.
func (r *AnalyticsRepository) SpendSummary(ctx context.Context, userID, from, to string) (*entity.SpendSummary, error) {
	summary := &entity.SpendSummary{}

	err := r.db.Executor(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COUNT(DISTINCT vendor)
		FROM invoices
		WHERE user_id = ? AND date >= ? AND date <= ?
	`, userID, from, to).Scan(&summary.TotalSpend, &summary.InvoiceCount, &summary.VendorCount)
	if err != nil {
		r.logger.Error("Failed to compute spend summary", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to compute spend summary: %w", err)
	}

	// Most frequently purchased product by line occurrence.
	err = r.db.Executor(ctx).QueryRowContext(ctx, `
		SELECT ii.description, COUNT(*) AS hits
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.user_id = ? AND i.date >= ? AND i.date <= ?
		GROUP BY ii.description
		ORDER BY hits DESC, ii.description
		LIMIT 1
	`, userID, from, to).Scan(&summary.TopProduct, &summary.TopProductHits)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to compute top product: %w", err)
	}

	return summary, nil
}

// ProductStats aggregates each product's spend, volume, mean unit price
// and most frequent vendor, ordered by spend descending.
func (r *AnalyticsRepository) ProductStats(ctx context.Context, userID, from, to string) ([]*entity.ProductStat, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT ii.description,
		       SUM(ii.total_price),
		       SUM(ii.quantity),
		       AVG(ii.unit_price),
		       (SELECT i2.vendor
		        FROM invoice_items ii2
		        JOIN invoices i2 ON i2.id = ii2.invoice_id
		        WHERE i2.user_id = ? AND ii2.description = ii.description
		          AND i2.date >= ? AND i2.date <= ?
		        GROUP BY i2.vendor
		        ORDER BY COUNT(*) DESC, i2.vendor
		        LIMIT 1)
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.user_id = ? AND i.date >= ? AND i.date <= ?
		GROUP BY ii.description
		ORDER BY SUM(ii.total_price) DESC
	`, userID, from, to, userID, from, to)
	if err != nil {
		r.logger.Error("Failed to compute product stats", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to compute product stats: %w", err)
	}
	defer rows.Close()

	var stats []*entity.ProductStat
	for rows.Next() {
		var stat entity.ProductStat
		if err := rows.Scan(
			&stat.Description,
			&stat.TotalSpend,
			&stat.TotalQuantity,
			&stat.AvgUnitPrice,
			&stat.TopVendor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product stat: %w", err)
		}
		stats = append(stats, &stat)
	}

	return stats, rows.Err()
}

// PriceSeries returns every observed unit price of one product for one
// user, oldest first. This backs the price-evolution chart.
func (r *AnalyticsRepository) PriceSeries(ctx context.Context, userID, description string) ([]*entity.PricePoint, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT i.date, ii.unit_price, i.vendor
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.user_id = ? AND ii.description = ?
		ORDER BY i.date, ii.id
	`, userID, description)
	if err != nil {
		r.logger.Error("Failed to load price series",
			zap.String("user_id", userID),
			zap.String("description", description),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load price series: %w", err)
	}
	defer rows.Close()

	var points []*entity.PricePoint
	for rows.Next() {
		var p entity.PricePoint
		if err := rows.Scan(&p.Date, &p.UnitPrice, &p.Vendor); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, &p)
	}

	return points, rows.Err()
}
