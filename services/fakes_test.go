package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

type memMembers struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*models.Member
	order   []primitive.ObjectID
	failDup int // number of Create calls to fail with ErrDuplicate
}

func newMemMembers() *memMembers {
	return &memMembers{byID: map[primitive.ObjectID]*models.Member{}}
}

func (m *memMembers) add(status string, sponsor *models.Member) *models.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	member := &models.Member{
		ID:       primitive.NewObjectID(),
		FullName: "Member",
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		UserType: models.MemberTypeMember,
		Status:   status,
	}
	if sponsor != nil {
		id := sponsor.ID
		member.SponsorID = &id
	}
	member.ReferralCode = "MBR" + strings.ToUpper(member.ID.Hex()[18:])
	m.byID[member.ID] = member
	m.order = append(m.order, member.ID)
	return member
}

func (m *memMembers) Create(_ context.Context, member *models.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDup > 0 {
		m.failDup--
		return repositories.ErrDuplicate
	}
	for _, existing := range m.byID {
		if existing.Email == member.Email || existing.ReferralCode == member.ReferralCode {
			return repositories.ErrDuplicate
		}
	}
	member.ID = primitive.NewObjectID()
	cp := *member
	m.byID[member.ID] = &cp
	m.order = append(m.order, member.ID)
	return nil
}

func (m *memMembers) FindByID(_ context.Context, id primitive.ObjectID) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.byID[id]; ok {
		cp := *member
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memMembers) find(match func(*models.Member) bool) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if member := m.byID[id]; match(member) {
			cp := *member
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memMembers) FindByEmail(_ context.Context, email string) (*models.Member, error) {
	return m.find(func(member *models.Member) bool { return member.Email == email })
}

func (m *memMembers) FindByReferralCode(_ context.Context, code string) (*models.Member, error) {
	return m.find(func(member *models.Member) bool { return member.ReferralCode == code })
}

func (m *memMembers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memMembers) Activate(_ context.Context, id primitive.ObjectID, pin string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.byID[id]
	if !ok || member.Status != models.MemberStatusPending {
		return repositories.ErrNotFound
	}
	member.Status = models.MemberStatusActive
	member.ActivationPin = pin
	member.ActivatedAt = &at
	return nil
}

func (m *memMembers) ListDirectReferrals(_ context.Context, id primitive.ObjectID) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Member
	for _, mid := range m.order {
		member := m.byID[mid]
		if member.SponsorID != nil && *member.SponsorID == id {
			out = append(out, *member)
		}
	}
	return out, nil
}

func (m *memMembers) DownlineCounts(_ context.Context, id primitive.ObjectID, depth int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make([]int, depth)
	frontier := []primitive.ObjectID{id}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []primitive.ObjectID
		for _, mid := range m.order {
			member := m.byID[mid]
			if member.SponsorID == nil {
				continue
			}
			for _, parent := range frontier {
				if *member.SponsorID == parent {
					next = append(next, member.ID)
					if member.Status == models.MemberStatusActive {
						counts[d]++
					}
				}
			}
		}
		frontier = next
	}
	return counts, nil
}

func (m *memMembers) Upline(_ context.Context, id primitive.ObjectID, depth int) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []primitive.ObjectID
	member, ok := m.byID[id]
	for ok && member.SponsorID != nil && len(out) < depth {
		out = append(out, *member.SponsorID)
		member, ok = m.byID[*member.SponsorID]
	}
	return out, nil
}

type memPins struct {
	mu       sync.Mutex
	pins     map[string]*models.Pin
	released []string
}

func newMemPins(codes ...string) *memPins {
	p := &memPins{pins: map[string]*models.Pin{}}
	for _, c := range codes {
		p.pins[c] = &models.Pin{ID: primitive.NewObjectID(), Code: c, Status: models.PinStatusUnused}
	}
	return p
}

func (p *memPins) InsertMany(_ context.Context, pins []models.Pin) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range pins {
		if _, ok := p.pins[pins[i].Code]; ok {
			return repositories.ErrDuplicate
		}
	}
	for i := range pins {
		pin := pins[i]
		pin.ID = primitive.NewObjectID()
		p.pins[pin.Code] = &pin
	}
	return nil
}

func (p *memPins) Redeem(_ context.Context, code string, memberID primitive.ObjectID, at time.Time) (*models.Pin, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pin, ok := p.pins[code]
	if !ok || pin.Status != models.PinStatusUnused {
		return nil, repositories.ErrNotFound
	}
	pin.Status = models.PinStatusUsed
	pin.UsedBy = &memberID
	pin.UsedAt = &at
	cp := *pin
	return &cp, nil
}

func (p *memPins) Release(_ context.Context, code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pin, ok := p.pins[code]
	if !ok {
		return repositories.ErrNotFound
	}
	pin.Status = models.PinStatusUnused
	pin.UsedBy = nil
	pin.UsedAt = nil
	p.released = append(p.released, code)
	return nil
}

func (p *memPins) List(_ context.Context, f repositories.PinFilter) ([]models.Pin, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Pin
	for _, pin := range p.pins {
		if f.Status != "" && pin.Status != f.Status {
			continue
		}
		if f.StockistID != nil && (pin.StockistID == nil || *pin.StockistID != *f.StockistID) {
			continue
		}
		out = append(out, *pin)
	}
	return out, nil
}

type memCommissions struct {
	mu      sync.Mutex
	records []*models.LevelCommission
}

func (s *memCommissions) InsertIfAbsent(_ context.Context, c *models.LevelCommission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.MemberID == c.MemberID && r.Level == c.Level {
			return false, nil
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	s.records = append(s.records, &cp)
	return true, nil
}

func (s *memCommissions) FindByID(_ context.Context, id primitive.ObjectID) (*models.LevelCommission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memCommissions) List(_ context.Context, f repositories.CommissionFilter) ([]models.LevelCommission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LevelCommission
	for _, r := range s.records {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.MemberID != nil && r.MemberID != *f.MemberID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *memCommissions) Transition(_ context.Context, id primitive.ObjectID, from string, set bson.M) (*models.LevelCommission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID != id || r.Status != from {
			continue
		}
		r.Status = set["status"].(string)
		if at, ok := set["processedAt"].(time.Time); ok {
			r.ProcessedAt = &at
		}
		if admin, ok := set["adminId"].(primitive.ObjectID); ok {
			r.AdminID = &admin
		}
		if note, ok := set["adminNote"].(string); ok {
			r.AdminNote = note
		}
		if at, ok := set["paidAt"].(time.Time); ok {
			r.PaidAt = &at
		}
		cp := *r
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *memCommissions) SumIssued(_ context.Context, memberID primitive.ObjectID) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, r := range s.records {
		if r.MemberID == memberID && (r.Status == models.CommissionStatusApproved || r.Status == models.CommissionStatusPaid) {
			total = total.Add(r.Amount)
		}
	}
	return total, nil
}

func (s *memCommissions) CountByStatus(_ context.Context, memberID primitive.ObjectID, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.records {
		if r.MemberID == memberID && r.Status == status {
			n++
		}
	}
	return n, nil
}

type memSettings struct {
	schedule matrix.Schedule
}

func (s *memSettings) GetSchedule(context.Context) (matrix.Schedule, error) {
	if s.schedule == nil {
		return nil, repositories.ErrNotFound
	}
	return s.schedule, nil
}

func (s *memSettings) SaveSchedule(_ context.Context, schedule matrix.Schedule) error {
	s.schedule = schedule
	return nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]matrix.Progress
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]matrix.Progress{}}
}

func (c *memCache) Get(_ context.Context, key string) (matrix.Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	return p, ok
}

func (c *memCache) Set(_ context.Context, key string, p matrix.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
}

func (c *memCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID, _, userType string) (string, string, error) {
	return "access-" + userID + "-" + userType, "refresh-" + userID, nil
}

func (fakeIssuer) ParseRefresh(token string) (string, error) {
	if !strings.HasPrefix(token, "refresh-") {
		return "", errors.New("not a refresh token")
	}
	return strings.TrimPrefix(token, "refresh-"), nil
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) CommissionProcessed(member *models.Member, c *models.LevelCommission) error {
	n.sent = append(n.sent, member.Email+":"+c.Status)
	return n.err
}

// smallSchedule is a 2-wide schedule that is quick to fill in tests
func smallSchedule() matrix.Schedule {
	return matrix.Schedule{
		{Level: 1, RequiredDownlines: 2, CommissionPerPerson: decimal.NewFromInt(100)},
		{Level: 2, RequiredDownlines: 4, CommissionPerPerson: decimal.NewFromInt(50)},
	}
}
