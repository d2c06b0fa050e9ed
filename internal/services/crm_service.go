package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
	crmrepo "github.com/concesa/salesagent/internal/repositories/crm"
	"github.com/concesa/salesagent/internal/utils"
)

// Customers with at least this many inquiries surface as hot leads.
const hotLeadMinInquiries = 3

// StagedInterest is one interest event held back until the turn commits.
type StagedInterest struct {
	Product        string
	DailyRateCents *int64
	RentalDays     *int
	Quote          *models.PricingQuote
}

// CRMCommit carries everything one finished turn writes to the CRM.
// NewName is set when the turn saved a customer name; CustomerID is the
// session's existing binding, zero when unbound.
type CRMCommit struct {
	SessionID      string
	CustomerID     uint
	NewName        string
	Interests      []StagedInterest
	UserMessage    string
	AssistantReply string
	TokensUsed     int
	CostUSD        float64
}

// CRMService persists customer activity. All writes of one turn land in a
// single transaction, committed only after the reply is computed, which
// bounds duplicates to at most once per turn.
type CRMService interface {
	CommitTurn(ctx context.Context, commit CRMCommit) (*models.Customer, error)
	Dashboard(ctx context.Context) (*models.CRMDashboard, error)
	CustomerDetail(ctx context.Context, id uint, convLimit int) (*models.CustomerDetail, error)
	// DetectInterest finds the first stock item mentioned in a message.
	DetectInterest(ctx context.Context, message string) (string, bool)
	Ping(ctx context.Context) error
}

type crmService struct {
	db            *gorm.DB
	customers     crmrepo.CustomerRepository
	interests     crmrepo.InterestRepository
	conversations crmrepo.ConversationRepository
	stock         crmrepo.StockRepository
}

func NewCRMService(db *gorm.DB, customers crmrepo.CustomerRepository, interests crmrepo.InterestRepository, conversations crmrepo.ConversationRepository, stock crmrepo.StockRepository) CRMService {
	return &crmService{
		db:            db,
		customers:     customers,
		interests:     interests,
		conversations: conversations,
		stock:         stock,
	}
}

func (s *crmService) CommitTurn(ctx context.Context, commit CRMCommit) (*models.Customer, error) {
	const op = "CRMService.CommitTurn"

	if commit.CustomerID == 0 && commit.NewName == "" {
		// Nothing to attribute the turn to; the CRM records bound customers only.
		return nil, nil
	}

	var bound *models.Customer
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := s.customers.WithTx(tx)
		interests := s.interests.WithTx(tx)
		conversations := s.conversations.WithTx(tx)

		var err error
		if commit.NewName != "" {
			bound, err = customers.UpsertByName(ctx, commit.NewName, now)
		} else {
			bound, err = customers.GetByID(ctx, commit.CustomerID)
		}
		if err != nil {
			return err
		}

		if err := customers.TouchContact(ctx, bound.ID, now); err != nil {
			return err
		}
		bound.LastContactAt = now
		bound.TotalInquiries++

		for _, staged := range commit.Interests {
			ev := &models.InterestEvent{
				CustomerID:     bound.ID,
				Product:        staged.Product,
				DailyRateCents: staged.DailyRateCents,
				RentalDays:     staged.RentalDays,
				Status:         models.InterestStatusOpen,
				CreatedAt:      now,
			}
			if staged.Quote != nil {
				raw, err := json.Marshal(staged.Quote)
				if err != nil {
					return err
				}
				ev.Quote = raw
			}
			if err := interests.Insert(ctx, ev); err != nil {
				return err
			}
		}

		return conversations.Insert(ctx, &models.ConversationRecord{
			CustomerID:     bound.ID,
			SessionID:      commit.SessionID,
			UserMessage:    commit.UserMessage,
			AssistantReply: commit.AssistantReply,
			TokensUsed:     commit.TokensUsed,
			CostUSD:        commit.CostUSD,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, utils.E(utils.CodePersistenceFailure, op, "failed to commit turn to CRM", err)
	}
	return bound, nil
}

func (s *crmService) Dashboard(ctx context.Context) (*models.CRMDashboard, error) {
	const op = "CRMService.Dashboard"

	total, err := s.customers.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count customers", err)
	}
	fresh, err := s.customers.CountNewSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count new customers", err)
	}
	events, err := s.interests.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count interest events", err)
	}
	top, err := s.interests.TopProducts(ctx, 5)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to rank products", err)
	}
	recent, err := s.customers.Recent(ctx, 5)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recent customers", err)
	}
	hot, err := s.customers.HotLeads(ctx, hotLeadMinInquiries)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list hot leads", err)
	}

	dash := &models.CRMDashboard{
		TotalCustomers:      int(total),
		NewCustomers24h:     int(fresh),
		TotalInterestEvents: int(events),
		TopProducts:         top,
		RecentCustomers:     make([]models.CustomerActivity, 0, len(recent)),
		HotLeads:            make([]models.CustomerActivity, 0, len(hot)),
	}
	for _, c := range recent {
		dash.RecentCustomers = append(dash.RecentCustomers, models.CustomerActivity{
			Name:          c.Name,
			Inquiries:     c.TotalInquiries,
			LastContactAt: c.LastContactAt,
		})
	}
	for _, c := range hot {
		dash.HotLeads = append(dash.HotLeads, models.CustomerActivity{
			Name:          c.Name,
			Inquiries:     c.TotalInquiries,
			LastContactAt: c.LastContactAt,
		})
	}
	return dash, nil
}

func (s *crmService) CustomerDetail(ctx context.Context, id uint, convLimit int) (*models.CustomerDetail, error) {
	const op = "CRMService.CustomerDetail"

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "customer not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load customer", err)
	}
	interests, err := s.interests.ListByCustomer(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interest events", err)
	}
	conversations, err := s.conversations.ListByCustomer(ctx, id, convLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversations", err)
	}

	return &models.CustomerDetail{
		Customer:      *customer,
		Interests:     interests,
		Conversations: conversations,
	}, nil
}

func (s *crmService) DetectInterest(ctx context.Context, message string) (string, bool) {
	items, err := s.stock.All(ctx)
	if err != nil {
		return "", false
	}
	lower := strings.ToLower(message)
	for _, item := range items {
		if strings.Contains(lower, item.Key) {
			return item.Key, true
		}
	}
	return "", false
}

func (s *crmService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
