package store

import (
	"context"
	"errors"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the SQL Store. The *gorm.DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Preload("Wallet").First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id uint, p domain.Profile) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{ID: id}).Select(
		"full_name", "phone", "date_of_birth", "emergency_contact_name", "emergency_contact_phone",
	).Updates(domain.User{Profile: p})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return s.GetUser(ctx, id)
}

func (s *GormStore) MarkEmailVerified(ctx context.Context, id uint, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&domain.User{ID: id}).Update("email_verified_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListUsers(ctx context.Context, page utils.Page) ([]domain.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := s.db.WithContext(ctx).Preload("Wallet").Order("id").
		Offset(page.Offset()).Limit(page.Size).Find(&users).Error
	return users, total, err
}

func (s *GormStore) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	err := translate(s.db.WithContext(ctx).Create(w).Error)
	if errors.Is(err, ErrDuplicate) {
		return ErrWalletExists
	}
	return err
}

func (s *GormStore) GetWalletByUser(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *GormStore) Deposit(ctx context.Context, walletID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	var w domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Wallet{}).Where("id = ?", walletID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&w, walletID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *GormStore) ListWalletTransactions(ctx context.Context, walletID uint, page utils.Page) ([]domain.WalletTransaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.WalletTransaction{}).Where("wallet_id = ?", walletID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []domain.WalletTransaction
	err := q.Order("created_at desc").Offset(page.Offset()).Limit(page.Size).Find(&txs).Error
	return txs, total, err
}

func (s *GormStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	if p.WalletID == nil {
		return ErrNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional debit: the balance check and the write are one statement.
		res := tx.Model(&domain.Wallet{}).
			Where("id = ? AND balance >= ?", *p.WalletID, p.Amount).
			Update("balance", gorm.Expr("balance - ?", p.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		return tx.Create(p).Error
	})
}

func (s *GormStore) GetPayment(ctx context.Context, id uint) (*domain.Payment, error) {
	var p domain.Payment
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) ListPayments(ctx context.Context, f PaymentFilter) ([]domain.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Payment{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []domain.Payment
	err := q.Order("created_at desc").Offset(f.Page.Offset()).Limit(f.Page.Size).Find(&payments).Error
	return payments, total, err
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id uint, status string) (*domain.Payment, error) {
	p, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(p).Update("status", status).Error; err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *GormStore) CreateHealthService(ctx context.Context, h *domain.HealthService) error {
	return translate(s.db.WithContext(ctx).Create(h).Error)
}

func (s *GormStore) ListHealthServices(ctx context.Context, userID uint, page utils.Page) ([]domain.HealthService, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.HealthService{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.HealthService
	err := q.Order("created_at desc").Offset(page.Offset()).Limit(page.Size).Find(&out).Error
	return out, total, err
}

func (s *GormStore) GetChatSession(ctx context.Context, userID uint, sessionID string) (*domain.ChatSession, error) {
	var cs domain.ChatSession
	err := s.db.WithContext(ctx).Where("user_id = ? AND session_id = ?", userID, sessionID).First(&cs).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cs, nil
}

func (s *GormStore) LatestChatSession(ctx context.Context, userID uint) (*domain.ChatSession, error) {
	var cs domain.ChatSession
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at desc").First(&cs).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cs, nil
}

func (s *GormStore) SaveChatSession(ctx context.Context, cs *domain.ChatSession) error {
	return translate(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"messages", "updated_at"}),
	}).Create(cs).Error)
}

func (s *GormStore) CreateWalletTransaction(ctx context.Context, t *domain.WalletTransaction) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) CreateHealthToolUsage(ctx context.Context, u *domain.HealthToolUsage) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) CreateAuditLog(ctx context.Context, l *domain.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *GormStore) CreateEmailNotification(ctx context.Context, n *domain.EmailNotification) error {
	return translate(s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) ListAuditLogs(ctx context.Context, f AuditFilter) ([]domain.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []domain.AuditLog
	err := q.Order("created_at desc").Offset(f.Page.Offset()).Limit(f.Page.Size).Find(&logs).Error
	return logs, total, err
}

func (s *GormStore) GetSettings(ctx context.Context) (map[string]string, error) {
	var rows []domain.AdminSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	stored := make(map[string]string, len(rows))
	for _, r := range rows {
		stored[r.Key] = r.Value
	}
	return mergeDefaults(stored), nil
}

func (s *GormStore) SaveSettings(ctx context.Context, values map[string]string, updatedBy uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			row := domain.AdminSetting{Key: k, Value: v, UpdatedBy: updatedBy}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var st DashboardStats
	counts := []struct {
		model any
		dest  *int64
	}{
		{&domain.User{}, &st.Users},
		{&domain.Wallet{}, &st.Wallets},
		{&domain.Payment{}, &st.Payments},
		{&domain.HealthService{}, &st.Bookings},
		{&domain.ChatSession{}, &st.ChatSessions},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	var volume struct{ Total decimal.Decimal }
	err := db.Model(&domain.Payment{}).Where("status = ?", domain.StatusCompleted).
		Select("COALESCE(SUM(amount), 0) AS total").Scan(&volume).Error
	if err != nil {
		return nil, err
	}
	st.PaymentVolume = volume.Total
	return &st, nil
}
