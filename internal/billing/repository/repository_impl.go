package repository

import (
	"context"
	"errors"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) billingdomain.Repository {
	return &repository{db: db}
}

func supportsRowLocks(tx *gorm.DB) bool {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}

func (r *repository) LockAccount(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error {
	stmt := tx.WithContext(ctx).Table("accounts").Where("id = ?", accountID)
	if supportsRowLocks(tx) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var id snowflake.ID
	if err := stmt.Select("id").Scan(&id).Error; err != nil {
		return err
	}
	if id == 0 {
		return accountdomain.ErrNotFound
	}
	return nil
}

func (r *repository) MaxSequence(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (int64, error) {
	var max int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(sequence), 0)
		 FROM documents
		 WHERE account_id = ?`,
		accountID,
	).Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repository) Insert(ctx context.Context, tx *gorm.DB, doc *billingdomain.Document) error {
	return tx.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindByID(ctx context.Context, accountID, id snowflake.ID) (*billingdomain.Document, error) {
	var doc billingdomain.Document
	err := r.db.WithContext(ctx).First(&doc, "account_id = ? AND id = ?", accountID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) List(ctx context.Context, accountID snowflake.ID) ([]billingdomain.Document, error) {
	var docs []billingdomain.Document
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("sequence DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) UpdateStatus(ctx context.Context, accountID, id snowflake.ID, status billingdomain.DocumentStatus) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE documents
		 SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE account_id = ? AND id = ?`,
		status,
		accountID,
		id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billingdomain.ErrDocumentNotFound
	}
	return nil
}

type summaryRow struct {
	Status billingdomain.DocumentStatus
	Total  decimal.Decimal
	N      int64
}

func (r *repository) Summarize(ctx context.Context, accountID snowflake.ID) (billingdomain.Summary, error) {
	var rows []summaryRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT status, COALESCE(SUM(net_amount), 0) AS total, COUNT(*) AS n
		 FROM documents
		 WHERE account_id = ? AND status <> ?
		 GROUP BY status`,
		accountID,
		billingdomain.StatusVoided,
	).Scan(&rows).Error
	if err != nil {
		return billingdomain.Summary{}, err
	}

	summary := billingdomain.Summary{}
	for _, row := range rows {
		summary.Issued = summary.Issued.Add(row.Total)
		summary.Count += row.N
		if row.Status == billingdomain.StatusPaid {
			summary.Collected = summary.Collected.Add(row.Total)
		}
	}
	summary.Outstanding = summary.Issued.Sub(summary.Collected)
	return summary, nil
}
