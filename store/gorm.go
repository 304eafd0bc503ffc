package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"vbs_tickets/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) TicketStore {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, t *model.Ticket) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return classifyUniqueViolation(err)
	}
	return nil
}

// classifyUniqueViolation maps Postgres unique violations onto the typed
// errors callers retry on. Constraint names come from the gorm index tags on
// model.Ticket.
func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "reference_unit") {
			return ErrDuplicateUnit
		}
		return ErrDuplicateTicketID
	}
	return err
}

func (s *gormStore) CountByReference(ctx context.Context, reference string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("reference = ?", reference).Count(&n).Error
	return n, err
}

func (s *gormStore) FindByTicketID(ctx context.Context, ticketID string) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *gormStore) FindByPhone(ctx context.Context, norm, raw, last9 string, limit int) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Where("phone = ? OR phone = ? OR phone LIKE ?", norm, raw, "%"+last9).
		Order("created_at DESC").
		Limit(limit).
		Find(&tickets).Error
	return tickets, err
}

func (s *gormStore) FindByPhoneAndAccessCode(ctx context.Context, phone, accessCode string) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.WithContext(ctx).
		Where("phone = ? AND access_code = ?", phone, accessCode).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *gormStore) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ?", ticketID).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) AccessCodeExists(ctx context.Context, accessCode string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("access_code = ?", accessCode).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) PhoneHasTicket(ctx context.Context, phone string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("phone = ?", phone).Count(&n).Error
	return n > 0, err
}

func (s *gormStore) UpdateStatus(ctx context.Context, ticketID string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ?", ticketID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) MarkUsed(ctx context.Context, ticketID, verifiedBy string) (*model.Ticket, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ? AND used = false", ticketID).
		Updates(map[string]any{
			"used":        true,
			"verified_at": now,
			"verified_by": verifiedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "never existed" from "second scan".
		t, err := s.FindByTicketID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if t.Used {
			return nil, ErrAlreadyUsed
		}
		return nil, ErrNotFound
	}
	return s.FindByTicketID(ctx, ticketID)
}

func (s *gormStore) UsedTickets(ctx context.Context, limit int) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Where("used = true").
		Order("verified_at DESC").
		Limit(limit).
		Find(&tickets).Error
	return tickets, err
}

func (s *gormStore) List(ctx context.Context, limit, page *int) ([]model.Ticket, int64, error) {
	var tickets []model.Ticket
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Ticket{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		query = query.Limit(*limit).Offset(*limit * (*page - 1))
	}
	err := query.Find(&tickets).Error
	return tickets, total, err
}

func (s *gormStore) UpdateByID(ctx context.Context, id uint, fields map[string]any) (*model.Ticket, error) {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *gormStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Ticket{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) Stats(ctx context.Context) (*model.Stats, error) {
	db := s.db.WithContext(ctx)
	var stats model.Stats
	if err := db.Model(&model.Ticket{}).Count(&stats.TotalTickets).Error; err != nil {
		return nil, err
	}
	var revenue decimal.NullDecimal
	if err := db.Model(&model.Ticket{}).
		Select("SUM(amount)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.Revenue = revenue.Decimal
	}
	if err := db.Model(&model.Ticket{}).
		Where("used = true").Count(&stats.CheckedIn).Error; err != nil {
		return nil, err
	}
	today := time.Now().Truncate(24 * time.Hour)
	if err := db.Model(&model.Ticket{}).
		Where("created_at >= ?", today).Count(&stats.TicketsToday).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
