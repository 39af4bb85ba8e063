package service

import (
	"errors"
	"time"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrConnectionNotFound       = errors.New("connection not found")
	ErrConnectionAccessDenied   = errors.New("not a party to this connection")
	ErrConnectionNotLead        = errors.New("connection is no longer a lead")
	ErrConnectionClosed         = errors.New("connection has reached a terminal state")
	ErrConnectionSelfNotAllowed = errors.New("cannot connect with your own business")
	ErrBusinessNotInvestable    = errors.New("business has not reached the partnership-ready tier")
)

type ConnectionService interface {
	InitiateConnection(investorID, businessID uint) (*model.Connection, error)
	RespondToConnection(connectionID, callerID uint) (*model.Connection, error)
	DeclineConnection(connectionID, callerID uint) (*model.Connection, error)
	GetConnection(connectionID, callerID uint) (*model.Connection, error)
	GetMyConnections(callerID uint) ([]model.Connection, error)

	// AdvanceForMilestones applies the milestone-driven transitions:
	// connected -> contract once a milestone is agreed, and
	// contract -> closed once all milestones are terminal with at least
	// one completed.
	AdvanceForMilestones(connectionID uint) (*model.Connection, error)
}

type connectionService struct {
	db            *gorm.DB
	connRepo      repository.ConnectionRepository
	businessRepo  repository.BusinessRepository
	matchRepo     repository.MatchRepository
	milestoneRepo repository.MilestoneRepository
	verification  VerificationService
	notifier      NotificationService
}

func NewConnectionService(
	db *gorm.DB,
	connRepo repository.ConnectionRepository,
	businessRepo repository.BusinessRepository,
	matchRepo repository.MatchRepository,
	milestoneRepo repository.MilestoneRepository,
	verification VerificationService,
	notifier NotificationService,
) ConnectionService {
	return &connectionService{
		db:            db,
		connRepo:      connRepo,
		businessRepo:  businessRepo,
		matchRepo:     matchRepo,
		milestoneRepo: milestoneRepo,
		verification:  verification,
		notifier:      notifier,
	}
}

// InitiateConnection creates a lead for the (investor, business) pair, or
// returns the existing connection unchanged. Never creates duplicates.
func (s *connectionService) InitiateConnection(investorID, businessID uint) (*model.Connection, error) {
	logger.Info("Initiating connection", map[string]interface{}{
		"investor_id": investorID,
		"business_id": businessID,
	})

	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if business.OwnerID == investorID {
		return nil, ErrConnectionSelfNotAllowed
	}

	existing, err := s.connRepo.FindByPair(investorID, businessID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Debug("Connection already exists", map[string]interface{}{
			"connection_id": existing.ID,
			"status":        existing.Status,
		})
		return existing, nil
	}

	conn := &model.Connection{
		InvestorID: investorID,
		BusinessID: businessID,
		Status:     model.ConnectionStatusLead,
	}
	if err := s.connRepo.Create(conn); err != nil {
		logger.Error("Failed to create connection", err, map[string]interface{}{
			"investor_id": investorID,
			"business_id": businessID,
		})
		return nil, err
	}

	// A suggestion that led to contact is no longer a suggestion.
	if err := s.matchRepo.MarkContacted(investorID, businessID); err != nil {
		logger.Warn("Failed to mark match suggestion contacted", map[string]interface{}{
			"investor_id": investorID,
			"business_id": businessID,
			"error":       err.Error(),
		})
	}

	created, err := s.connRepo.FindByIDWithParties(conn.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyConnectionRequested(created)
	}

	logger.Info("Connection initiated", map[string]interface{}{
		"connection_id": created.ID,
	})
	return created, nil
}

// RespondToConnection moves a lead to connected and creates its conversation
// in the same transaction. Calling again past lead is a silent no-op.
func (s *connectionService) RespondToConnection(connectionID, callerID uint) (*model.Connection, error) {
	conn, err := s.connRepo.FindByIDWithParties(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if !conn.Involves(callerID) {
		logger.Warn("Connection respond forbidden", map[string]interface{}{
			"connection_id": connectionID,
			"user_id":       callerID,
		})
		return nil, ErrConnectionAccessDenied
	}

	if conn.Status == model.ConnectionStatusRejected {
		return nil, ErrConnectionClosed
	}
	if conn.Status != model.ConnectionStatusLead {
		// Already connected or beyond; the conversation exists.
		return conn, nil
	}

	investable, err := s.verification.CanReceiveInvestment(conn.BusinessID)
	if err != nil {
		return nil, err
	}
	if !investable {
		logger.Warn("Connection respond refused, business below threshold", map[string]interface{}{
			"connection_id": connectionID,
			"business_id":   conn.BusinessID,
		})
		return nil, ErrBusinessNotInvestable
	}

	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	res := tx.Model(&model.Connection{}).
		Where("id = ? AND status = ?", connectionID, model.ConnectionStatusLead).
		Updates(map[string]interface{}{
			"status":       model.ConnectionStatusConnected,
			"connected_at": now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent accept won the status guard; its transaction owns
		// the conversation, so this call degrades to the usual no-op.
		tx.Rollback()
		return s.connRepo.FindByIDWithParties(connectionID)
	}

	conversation := &model.Conversation{
		ConnectionID: connectionID,
		InvestorID:   conn.InvestorID,
		OwnerID:      conn.Business.OwnerID,
	}
	if err := tx.Create(conversation).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create conversation for connection", err, map[string]interface{}{
			"connection_id": connectionID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	conn.Status = model.ConnectionStatusConnected
	conn.ConnectedAt = &now

	if s.notifier != nil {
		s.notifier.NotifyConnectionAccepted(conn)
	}

	logger.Info("Connection accepted", map[string]interface{}{
		"connection_id":   connectionID,
		"conversation_id": conversation.ID,
	})
	return conn, nil
}

// DeclineConnection moves a lead to rejected.
func (s *connectionService) DeclineConnection(connectionID, callerID uint) (*model.Connection, error) {
	conn, err := s.connRepo.FindByIDWithParties(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if !conn.Involves(callerID) {
		return nil, ErrConnectionAccessDenied
	}

	if conn.Status == model.ConnectionStatusRejected {
		return conn, nil
	}
	if conn.Status != model.ConnectionStatusLead {
		return nil, ErrConnectionNotLead
	}

	now := time.Now()
	conn.Status = model.ConnectionStatusRejected
	conn.RejectedAt = &now

	if err := s.connRepo.Update(conn); err != nil {
		logger.Error("Failed to decline connection", err, map[string]interface{}{
			"connection_id": connectionID,
		})
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyConnectionDeclined(conn)
	}

	logger.Info("Connection declined", map[string]interface{}{
		"connection_id": connectionID,
	})
	return conn, nil
}

func (s *connectionService) GetConnection(connectionID, callerID uint) (*model.Connection, error) {
	conn, err := s.connRepo.FindByIDWithParties(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if !conn.Involves(callerID) {
		return nil, ErrConnectionAccessDenied
	}

	return conn, nil
}

// GetMyConnections returns connections where the caller is the investor plus
// connections on businesses the caller owns. Two indexed queries, not a
// per-business fan-out.
func (s *connectionService) GetMyConnections(callerID uint) ([]model.Connection, error) {
	asInvestor, err := s.connRepo.FindByInvestorID(callerID)
	if err != nil {
		return nil, err
	}

	owned, err := s.businessRepo.FindByOwnerID(callerID)
	if err != nil {
		return nil, err
	}

	businessIDs := make([]uint, 0, len(owned))
	for _, b := range owned {
		businessIDs = append(businessIDs, b.ID)
	}

	asOwner, err := s.connRepo.FindByBusinessIDs(businessIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(asInvestor)+len(asOwner))
	result := make([]model.Connection, 0, len(asInvestor)+len(asOwner))
	for _, conn := range append(asInvestor, asOwner...) {
		if seen[conn.ID] {
			continue
		}
		seen[conn.ID] = true
		result = append(result, conn)
	}

	return result, nil
}

func (s *connectionService) AdvanceForMilestones(connectionID uint) (*model.Connection, error) {
	conn, err := s.connRepo.FindByID(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if conn.IsTerminal() || conn.Status == model.ConnectionStatusLead {
		return conn, nil
	}

	milestones, err := s.milestoneRepo.FindByConnectionID(connectionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if conn.Status == model.ConnectionStatusConnected {
		for _, m := range milestones {
			if m.Status == model.MilestoneStatusAgreed || m.Status == model.MilestoneStatusCompleted {
				conn.Status = model.ConnectionStatusContract
				conn.ContractAt = &now
				break
			}
		}
	}

	if conn.Status == model.ConnectionStatusContract && len(milestones) > 0 {
		allTerminal := true
		anyCompleted := false
		for _, m := range milestones {
			if !m.IsTerminal() {
				allTerminal = false
				break
			}
			if m.Status == model.MilestoneStatusCompleted {
				anyCompleted = true
			}
		}
		if allTerminal && anyCompleted {
			conn.Status = model.ConnectionStatusClosed
			conn.ClosedAt = &now
		}
	}

	if err := s.connRepo.Update(conn); err != nil {
		logger.Error("Failed to advance connection", err, map[string]interface{}{
			"connection_id": connectionID,
		})
		return nil, err
	}

	logger.Debug("Connection state advanced", map[string]interface{}{
		"connection_id": connectionID,
		"status":        conn.Status,
	})
	return conn, nil
}
