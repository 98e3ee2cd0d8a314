package ordersource

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
	"github.com/tsiory/pos-print-relay/internal/domain/repository"
	"github.com/tsiory/pos-print-relay/pkg/apperror"
)

// Row models for the point-of-sale schema. Only the fields the receipt
// needs are mapped.

type orderRow struct {
	ID            int    `gorm:"primaryKey"`
	Name          string `gorm:"index"`
	DateOrder     time.Time
	AmountTotal   float64
	AmountTax     float64
	RegisterID    int
	RegisterName  string
	UserID        int
	CashierName   string
	CustomerID    *int
	CustomerName  string
	DiningTable   string `gorm:"column:table_name"`
	FloorName     string
	CoversCount   int
	BarcodeValue  string
	CompanyID     int
	Company       companyRow      `gorm:"foreignKey:CompanyID"`
	Lines         []orderLineRow  `gorm:"foreignKey:OrderID"`
	Payments      []paymentRow    `gorm:"foreignKey:OrderID"`
}

func (orderRow) TableName() string { return "pos_orders" }

type companyRow struct {
	ID               int `gorm:"primaryKey"`
	Name             string
	Phone            string
	Email            string
	Website          string
	Logo             []byte
	CurrencySymbol   string
	CurrencyPosition string
}

func (companyRow) TableName() string { return "companies" }

type orderLineRow struct {
	ID                      int `gorm:"primaryKey"`
	OrderID                 int `gorm:"index"`
	ProductName             string
	Quantity                float64
	UnitPrice               float64
	StandardUnitPrice       float64
	SubtotalInclusive       float64
	SubtotalExclusive       float64
	ExplicitDiscountPercent float64
	TaxRate                 float64
	IsRewardLine            bool
	RewardDiscountPercent   float64
	PointsCost              float64
}

func (orderLineRow) TableName() string { return "pos_order_lines" }

type paymentRow struct {
	ID         int `gorm:"primaryKey"`
	OrderID    int `gorm:"index"`
	MethodName string
	Amount     float64
}

func (paymentRow) TableName() string { return "pos_payments" }

type loyaltyCardRow struct {
	ID          int `gorm:"primaryKey"`
	CustomerID  int `gorm:"index"`
	Code        string
	ProgramName string
	PointName   string
	Points      float64
}

func (loyaltyCardRow) TableName() string { return "loyalty_cards" }

type loyaltyHistoryRow struct {
	ID      int `gorm:"primaryKey"`
	OrderID int `gorm:"index"`
	CardID  int
	Card    loyaltyCardRow `gorm:"foreignKey:CardID"`
	Issued  float64
	Used    float64
}

func (loyaltyHistoryRow) TableName() string { return "loyalty_history" }

// localSource assembles snapshots from a point-of-sale database directly,
// for deployments where the relay runs next to the backend.
type localSource struct {
	db *gorm.DB
}

// NewLocal creates an OrderSource backed by the given database.
func NewLocal(db *gorm.DB) repository.OrderSource {
	return &localSource{db: db}
}

func (s *localSource) GetByName(ctx context.Context, name string) (*entity.OrderSnapshot, error) {
	var row orderRow
	err := s.db.WithContext(ctx).
		Preload("Company").Preload("Lines").Preload("Payments").
		Where("name = ?", name).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Order " + name)
	}
	if err != nil {
		return nil, apperror.NewUpstreamError("order lookup failed: " + err.Error())
	}
	return s.toSnapshot(ctx, &row), nil
}

func (s *localSource) GetLast(ctx context.Context, registerID, userID int) (*entity.OrderSnapshot, error) {
	q := s.db.WithContext(ctx).
		Preload("Company").Preload("Lines").Preload("Payments")
	if registerID > 0 {
		q = q.Where("register_id = ?", registerID)
	}
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	var row orderRow
	err := q.Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Last order")
	}
	if err != nil {
		return nil, apperror.NewUpstreamError("order lookup failed: " + err.Error())
	}
	return s.toSnapshot(ctx, &row), nil
}

func (s *localSource) toSnapshot(ctx context.Context, row *orderRow) *entity.OrderSnapshot {
	snapshot := &entity.OrderSnapshot{
		Name:          row.Name,
		ID:            row.ID,
		Date:          row.DateOrder,
		RegisterName:  row.RegisterName,
		RegisterID:    row.RegisterID,
		CashierName:   row.CashierName,
		CustomerName:  row.CustomerName,
		CoversCount:   row.CoversCount,
		AmountTotal:   row.AmountTotal,
		AmountTax:     row.AmountTax,
		BarcodeSource: row.BarcodeValue,
		Company: entity.Company{
			ID:               row.Company.ID,
			Name:             row.Company.Name,
			Phone:            row.Company.Phone,
			Email:            row.Company.Email,
			Website:          row.Company.Website,
			Logo:             row.Company.Logo,
			CurrencySymbol:   row.Company.CurrencySymbol,
			CurrencyPosition: row.Company.CurrencyPosition,
		},
	}

	if row.DiningTable != "" {
		floor := row.FloorName
		if floor == "" {
			floor = "Salle"
		}
		snapshot.Table = &entity.TableInfo{Floor: floor, Table: row.DiningTable}
	}

	snapshot.Lines = make([]entity.OrderLine, 0, len(row.Lines))
	for _, ln := range row.Lines {
		snapshot.Lines = append(snapshot.Lines, entity.OrderLine{
			Name:                    ln.ProductName,
			Quantity:                ln.Quantity,
			UnitPrice:               ln.UnitPrice,
			StandardUnitPrice:       ln.StandardUnitPrice,
			SubtotalInclusive:       ln.SubtotalInclusive,
			SubtotalExclusive:       ln.SubtotalExclusive,
			ExplicitDiscountPercent: ln.ExplicitDiscountPercent,
			TaxRate:                 ln.TaxRate,
			IsRewardLine:            ln.IsRewardLine,
			RewardDiscountPercent:   ln.RewardDiscountPercent,
		})
	}

	snapshot.Payments = make([]entity.Payment, 0, len(row.Payments))
	for _, p := range row.Payments {
		snapshot.Payments = append(snapshot.Payments, entity.Payment{
			MethodName: p.MethodName,
			Amount:     p.Amount,
		})
	}

	snapshot.TaxDetails = taxBreakdown(snapshot.Lines)
	snapshot.Loyalty = s.lookupLoyalty(ctx, row)

	return snapshot
}

// taxBreakdown aggregates lines per distinct tax rate, ascending.
func taxBreakdown(lines []entity.OrderLine) []entity.TaxDetail {
	byRate := map[float64]*entity.TaxDetail{}
	for _, ln := range lines {
		ht := ln.SubtotalExclusive
		ttc := ln.SubtotalInclusive
		rate := ln.TaxRate
		if rate == 0 && ht > 0 {
			rate = float64(int((ttc-ht)/ht*100 + 0.5))
		}
		d, ok := byRate[rate]
		if !ok {
			d = &entity.TaxDetail{Rate: rate}
			byRate[rate] = d
		}
		d.Base += ht
		d.Amount += ttc - ht
		d.Total += ttc
	}

	details := make([]entity.TaxDetail, 0, len(byRate))
	for _, d := range byRate {
		details = append(details, *d)
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Rate < details[j].Rate })
	return details
}

// loyaltyLookup is one strategy of the loyalty fallback chain. Strategies
// are evaluated in order until one yields data; all-nil means no loyalty
// block on the receipt, which is not an error.
type loyaltyLookup func(ctx context.Context, row *orderRow) *entity.Loyalty

func (s *localSource) lookupLoyalty(ctx context.Context, row *orderRow) *entity.Loyalty {
	if row.CustomerID == nil {
		return nil
	}
	chain := []loyaltyLookup{
		s.loyaltyFromHistory,
		s.loyaltyFromCustomerCard,
		s.loyaltyFromAnyNonGiftCard,
	}
	for _, lookup := range chain {
		if l := lookup(ctx, row); l != nil {
			return l
		}
	}
	return nil
}

func isLoyaltyProgram(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "loyalty") || strings.Contains(lower, "fidélité")
}

func (s *localSource) pointsUsedFromLines(row *orderRow) float64 {
	var used float64
	for _, ln := range row.Lines {
		used += ln.PointsCost
	}
	return used
}

func (s *localSource) loyaltyFromHistory(ctx context.Context, row *orderRow) *entity.Loyalty {
	var histories []loyaltyHistoryRow
	if err := s.db.WithContext(ctx).Preload("Card").Where("order_id = ?", row.ID).Find(&histories).Error; err != nil {
		return nil
	}
	for _, h := range histories {
		if !isLoyaltyProgram(h.Card.ProgramName) {
			continue
		}
		used := s.pointsUsedFromLines(row)
		if used == 0 {
			used = h.Used
		}
		earned := h.Issued
		current := h.Card.Points
		previous := current - earned + used
		return &entity.Loyalty{
			CardNumber:     h.Card.Code,
			ProgramName:    h.Card.ProgramName,
			PointName:      pointName(h.Card.PointName),
			CurrentPoints:  current,
			PreviousPoints: &previous,
			PointsEarned:   &earned,
			PointsUsed:     &used,
		}
	}
	return nil
}

func (s *localSource) loyaltyFromCustomerCard(ctx context.Context, row *orderRow) *entity.Loyalty {
	return s.cardLoyalty(ctx, row, isLoyaltyProgram)
}

func (s *localSource) loyaltyFromAnyNonGiftCard(ctx context.Context, row *orderRow) *entity.Loyalty {
	return s.cardLoyalty(ctx, row, func(name string) bool {
		return !strings.Contains(strings.ToLower(name), "gift")
	})
}

func (s *localSource) cardLoyalty(ctx context.Context, row *orderRow, match func(string) bool) *entity.Loyalty {
	var cards []loyaltyCardRow
	if err := s.db.WithContext(ctx).Where("customer_id = ?", *row.CustomerID).Find(&cards).Error; err != nil {
		return nil
	}
	for _, card := range cards {
		if !match(card.ProgramName) {
			continue
		}
		used := s.pointsUsedFromLines(row)
		return &entity.Loyalty{
			CardNumber:    card.Code,
			ProgramName:   card.ProgramName,
			PointName:     pointName(card.PointName),
			CurrentPoints: card.Points,
			PointsUsed:    &used,
		}
	}
	return nil
}

func pointName(name string) string {
	if name == "" {
		return "pts"
	}
	return name
}
