package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/couchcryptid/mine-ops-etl/internal/config"
	"github.com/couchcryptid/mine-ops-etl/internal/domain"
)

// Warehouse is one run's connection to the staging and warehouse schemas.
// It implements pipeline.Warehouse.
type Warehouse struct {
	conn      *pgx.Conn
	staging   string
	warehouse string
	logger    *slog.Logger
}

// Connect opens a single connection to the database at cfg.DatabaseURL.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Warehouse, error) {
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Warehouse{
		conn:      conn,
		staging:   cfg.StagingSchema,
		warehouse: cfg.WarehouseSchema,
		logger:    logger,
	}, nil
}

// Extract reads production logs, sensor readings, and the mine registry.
func (w *Warehouse) Extract(ctx context.Context) (domain.RawDataset, error) {
	production, err := w.extractProduction(ctx)
	if err != nil {
		return domain.RawDataset{}, err
	}
	sensors, err := w.extractSensors(ctx)
	if err != nil {
		return domain.RawDataset{}, err
	}
	mines, err := w.extractMines(ctx)
	if err != nil {
		return domain.RawDataset{}, err
	}
	return domain.RawDataset{Production: production, Sensors: sensors, Mines: mines}, nil
}

func (w *Warehouse) extractProduction(ctx context.Context) ([]domain.ProductionEntry, error) {
	rows, err := w.conn.Query(ctx, productionQuery(w.staging))
	if err != nil {
		return nil, fmt.Errorf("postgres: query production logs: %w", err)
	}
	defer rows.Close()

	var results []domain.ProductionEntry
	for rows.Next() {
		var (
			date    *time.Time
			mineID  *string
			tons    string
			quality *string
		)
		if err := rows.Scan(&date, &mineID, &tons, &quality); err != nil {
			return nil, fmt.Errorf("postgres: scan production row: %w", err)
		}

		e := domain.ProductionEntry{}
		if date != nil {
			e.Date = *date
		}
		if mineID != nil {
			e.MineID = *mineID
		}
		if e.TonsExtracted, err = domain.ParseDecimal(tons); err != nil {
			return nil, fmt.Errorf("postgres: production tons_extracted: %w", err)
		}
		if quality != nil {
			grade, err := domain.ParseDecimal(*quality)
			if err != nil {
				return nil, fmt.Errorf("postgres: production quality_grade: %w", err)
			}
			e.QualityGrade = &grade
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read production logs: %w", err)
	}
	return results, nil
}

func (w *Warehouse) extractSensors(ctx context.Context) ([]domain.SensorReading, error) {
	rows, err := w.conn.Query(ctx, sensorQuery(w.staging))
	if err != nil {
		return nil, fmt.Errorf("postgres: query equipment sensors: %w", err)
	}
	defer rows.Close()

	var results []domain.SensorReading
	for rows.Next() {
		var (
			ts          *time.Time
			equipmentID *string
			r           domain.SensorReading
		)
		if err := rows.Scan(&ts, &equipmentID, &r.Status, &r.FuelConsumption, &r.MaintenanceAlert); err != nil {
			return nil, fmt.Errorf("postgres: scan sensor row: %w", err)
		}
		if ts != nil {
			r.Timestamp = *ts
		}
		if equipmentID != nil {
			r.EquipmentID = *equipmentID
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read equipment sensors: %w", err)
	}
	return results, nil
}

func (w *Warehouse) extractMines(ctx context.Context) ([]domain.Mine, error) {
	rows, err := w.conn.Query(ctx, mineQuery(w.staging))
	if err != nil {
		return nil, fmt.Errorf("postgres: query mines: %w", err)
	}
	defer rows.Close()

	var results []domain.Mine
	for rows.Next() {
		var m domain.Mine
		if err := rows.Scan(&m.ID, &m.Name, &m.Location); err != nil {
			return nil, fmt.Errorf("postgres: scan mine row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read mines: %w", err)
	}
	return results, nil
}

// Write upserts batch into the warehouse schema inside one transaction, so a
// table is either fully written or left as it was.
func (w *Warehouse) Write(ctx context.Context, batch domain.TableBatch) (err error) {
	if len(batch.Rows) == 0 {
		return nil
	}

	tx, err := w.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin %s: %w", batch.Table.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	query := upsertSQL(w.warehouse, batch.Table)
	b := &pgx.Batch{}
	for _, row := range batch.Rows {
		b.Queue(query, row...)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", batch.Table.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit %s: %w", batch.Table.Name, err)
	}

	w.logger.Debug("batch upserted", "table", batch.Table.Name, "rows", len(batch.Rows))
	return nil
}

// Close releases the connection.
func (w *Warehouse) Close(ctx context.Context) error {
	return w.conn.Close(ctx)
}
