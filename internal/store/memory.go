package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/utils"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps every table in process. A single mutex serialises all
// access, which is what makes CreatePayment's check-and-debit atomic here.
type MemoryStore struct {
	mu sync.Mutex

	seq map[string]uint

	users         map[uint]*domain.User
	wallets       map[uint]*domain.Wallet
	payments      map[uint]*domain.Payment
	services      map[uint]*domain.HealthService
	chats         map[uint]*domain.ChatSession
	walletTxs     []domain.WalletTransaction
	usage         []domain.HealthToolUsage
	audit         []domain.AuditLog
	notifications []domain.EmailNotification
	settings      map[string]domain.AdminSetting

	now func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seq:      make(map[string]uint),
		users:    make(map[uint]*domain.User),
		wallets:  make(map[uint]*domain.Wallet),
		payments: make(map[uint]*domain.Payment),
		services: make(map[uint]*domain.HealthService),
		chats:    make(map[uint]*domain.ChatSession),
		settings: make(map[string]domain.AdminSetting),
		now:      time.Now,
	}
}

func (m *MemoryStore) next(table string) uint {
	m.seq[table]++
	return m.seq[table]
}

func paginate[T any](rows []T, page utils.Page) []T {
	if page.Size == 0 {
		return rows
	}
	start := page.Offset()
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := start + page.Size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.ID = m.next("users")
	u.CreatedAt, u.UpdatedAt = m.now(), m.now()
	cp := *u
	cp.Wallet = nil
	m.users[u.ID] = &cp
	return nil
}

// userLocked returns a copy of the user with its wallet attached.
func (m *MemoryStore) userLocked(u *domain.User) *domain.User {
	cp := *u
	for _, w := range m.wallets {
		if w.UserID == u.ID {
			wc := *w
			cp.Wallet = &wc
			break
		}
	}
	return &cp
}

func (m *MemoryStore) GetUser(_ context.Context, id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.userLocked(u), nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id uint, p domain.Profile) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Profile = p
	u.UpdatedAt = m.now()
	return m.userLocked(u), nil
}

func (m *MemoryStore) MarkEmailVerified(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.EmailVerifiedAt = &at
	return nil
}

func (m *MemoryStore) ListUsers(_ context.Context, page utils.Page) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *m.userLocked(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (m *MemoryStore) CreateWallet(_ context.Context, w *domain.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.wallets {
		if existing.UserID == w.UserID {
			return ErrWalletExists
		}
	}
	w.ID = m.next("wallets")
	w.CreatedAt, w.UpdatedAt = m.now(), m.now()
	cp := *w
	m.wallets[w.ID] = &cp
	return nil
}

func (m *MemoryStore) GetWalletByUser(_ context.Context, userID uint) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Deposit(_ context.Context, walletID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = m.now()
	cp := *w
	return &cp, nil
}

func (m *MemoryStore) ListWalletTransactions(_ context.Context, walletID uint, page utils.Page) ([]domain.WalletTransaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WalletTransaction
	for i := len(m.walletTxs) - 1; i >= 0; i-- {
		if m.walletTxs[i].WalletID == walletID {
			out = append(out, m.walletTxs[i])
		}
	}
	return paginate(out, page), int64(len(out)), nil
}

func (m *MemoryStore) CreatePayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.WalletID == nil {
		return ErrNotFound
	}
	w, ok := m.wallets[*p.WalletID]
	if !ok {
		return ErrNotFound
	}
	if w.Balance.LessThan(p.Amount) {
		return ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(p.Amount)
	w.UpdatedAt = m.now()
	p.ID = m.next("payments")
	p.CreatedAt, p.UpdatedAt = m.now(), m.now()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *MemoryStore) GetPayment(_ context.Context, id uint) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) ListPayments(_ context.Context, f PaymentFilter) ([]domain.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for _, p := range m.payments {
		if f.UserID != 0 && p.UserID != f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.From != nil && p.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && p.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (m *MemoryStore) UpdatePaymentStatus(_ context.Context, id uint, status string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = m.now()
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) CreateHealthService(_ context.Context, h *domain.HealthService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = m.next("health_services")
	h.CreatedAt, h.UpdatedAt = m.now(), m.now()
	cp := *h
	m.services[h.ID] = &cp
	return nil
}

func (m *MemoryStore) ListHealthServices(_ context.Context, userID uint, page utils.Page) ([]domain.HealthService, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.HealthService
	for _, h := range m.services {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func copySession(cs *domain.ChatSession) *domain.ChatSession {
	cp := *cs
	cp.Messages = append([]domain.ChatMessage(nil), cs.Messages...)
	return &cp
}

func (m *MemoryStore) GetChatSession(_ context.Context, userID uint, sessionID string) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cs := range m.chats {
		if cs.UserID == userID && cs.SessionID == sessionID {
			return copySession(cs), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) LatestChatSession(_ context.Context, userID uint) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.ChatSession
	for _, cs := range m.chats {
		if cs.UserID != userID {
			continue
		}
		if latest == nil || cs.UpdatedAt.After(latest.UpdatedAt) ||
			(cs.UpdatedAt.Equal(latest.UpdatedAt) && cs.ID > latest.ID) {
			latest = cs
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return copySession(latest), nil
}

func (m *MemoryStore) SaveChatSession(_ context.Context, cs *domain.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, existing := range m.chats {
		if existing.UserID == cs.UserID && existing.SessionID == cs.SessionID {
			cs.ID, cs.CreatedAt, cs.UpdatedAt = id, existing.CreatedAt, now
			m.chats[id] = copySession(cs)
			return nil
		}
	}
	cs.ID = m.next("chat_sessions")
	cs.CreatedAt, cs.UpdatedAt = now, now
	m.chats[cs.ID] = copySession(cs)
	return nil
}

func (m *MemoryStore) CreateWalletTransaction(_ context.Context, t *domain.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.next("wallet_transactions")
	t.CreatedAt = m.now()
	m.walletTxs = append(m.walletTxs, *t)
	return nil
}

func (m *MemoryStore) CreateHealthToolUsage(_ context.Context, u *domain.HealthToolUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.next("health_tools_usage")
	u.CreatedAt = m.now()
	m.usage = append(m.usage, *u)
	return nil
}

func (m *MemoryStore) CreateAuditLog(_ context.Context, l *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.next("audit_logs")
	l.CreatedAt = m.now()
	m.audit = append(m.audit, *l)
	return nil
}

func (m *MemoryStore) CreateEmailNotification(_ context.Context, n *domain.EmailNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.next("email_notifications")
	n.CreatedAt = m.now()
	if n.Status == "" {
		n.Status = domain.StatusPending
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *MemoryStore) ListAuditLogs(_ context.Context, f AuditFilter) ([]domain.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditLog
	for i := len(m.audit) - 1; i >= 0; i-- {
		l := m.audit[i]
		if f.UserID != 0 && l.UserID != f.UserID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, f.Page), int64(len(out)), nil
}

func (m *MemoryStore) GetSettings(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make(map[string]string, len(m.settings))
	for k, s := range m.settings {
		stored[k] = s.Value
	}
	return mergeDefaults(stored), nil
}

func (m *MemoryStore) SaveSettings(_ context.Context, values map[string]string, updatedBy uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.settings[k] = domain.AdminSetting{Key: k, Value: v, UpdatedBy: updatedBy, UpdatedAt: m.now()}
	}
	return nil
}

func (m *MemoryStore) Stats(_ context.Context) (*DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &DashboardStats{
		Users:        int64(len(m.users)),
		Wallets:      int64(len(m.wallets)),
		Payments:     int64(len(m.payments)),
		Bookings:     int64(len(m.services)),
		ChatSessions: int64(len(m.chats)),
	}
	for _, p := range m.payments {
		if p.Status == domain.StatusCompleted {
			st.PaymentVolume = st.PaymentVolume.Add(p.Amount)
		}
	}
	return st, nil
}

// WalletTransactions returns every wallet history row. Used by tests to check
// side writes.
func (m *MemoryStore) WalletTransactions() []domain.WalletTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.WalletTransaction(nil), m.walletTxs...)
}

// Notifications returns every outbox row.
func (m *MemoryStore) Notifications() []domain.EmailNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EmailNotification(nil), m.notifications...)
}

// Usage returns every health tool usage row.
func (m *MemoryStore) Usage() []domain.HealthToolUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HealthToolUsage(nil), m.usage...)
}
