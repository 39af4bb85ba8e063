package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMilestoneNotFound        = errors.New("milestone not found")
	ErrMilestoneAccessDenied    = errors.New("not a party to this milestone's connection")
	ErrMilestoneInvalidState    = errors.New("milestone is not in a state that allows this action")
	ErrMilestoneNotCounterparty = errors.New("only the counterparty can decide on a proposal")
	ErrMilestoneTitleRequired   = errors.New("milestone title is required")
	ErrConnectionNotActive      = errors.New("connection is not in an active state")
	ErrExtensionNotFound        = errors.New("extension request not found")
	ErrExtensionInvalidState    = errors.New("extension request has already been decided")
	ErrExtensionPendingExists   = errors.New("an extension request is already pending")
)

type MilestoneInput struct {
	Title       string
	Description string
	Amount      *int64
	Deadline    *time.Time
}

type MilestoneService interface {
	ProposeMilestone(connectionID, proposerID uint, input MilestoneInput) (*model.Milestone, error)
	AgreeMilestone(milestoneID, callerID uint) (*model.Milestone, error)
	RejectMilestone(milestoneID, callerID uint) (*model.Milestone, error)
	CompleteMilestone(milestoneID, callerID uint) (*model.Milestone, error)
	CancelMilestone(milestoneID, callerID uint) (*model.Milestone, error)
	GetMilestones(connectionID, callerID uint) ([]model.Milestone, error)

	RequestExtension(milestoneID, callerID uint, newDeadline time.Time, reason string) (*model.MilestoneExtension, error)
	DecideExtension(extensionID, callerID uint, approve bool) (*model.MilestoneExtension, error)
}

type milestoneService struct {
	repo          repository.MilestoneRepository
	connRepo      repository.ConnectionRepository
	connections   ConnectionService
	conversations ConversationService
	notifier      NotificationService
}

func NewMilestoneService(
	repo repository.MilestoneRepository,
	connRepo repository.ConnectionRepository,
	connections ConnectionService,
	conversations ConversationService,
	notifier NotificationService,
) MilestoneService {
	return &milestoneService{
		repo:          repo,
		connRepo:      connRepo,
		connections:   connections,
		conversations: conversations,
		notifier:      notifier,
	}
}

// ProposeMilestone creates a proposed milestone on a connected (or contract)
// connection and drops a milestone_proposal message into its conversation.
func (s *milestoneService) ProposeMilestone(connectionID, proposerID uint, input MilestoneInput) (*model.Milestone, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrMilestoneTitleRequired
	}

	conn, err := s.connRepo.FindByIDWithParties(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if !conn.Involves(proposerID) {
		return nil, ErrMilestoneAccessDenied
	}

	if conn.Status != model.ConnectionStatusConnected && conn.Status != model.ConnectionStatusContract {
		return nil, ErrConnectionNotActive
	}

	milestone := &model.Milestone{
		ConnectionID: connectionID,
		Title:        input.Title,
		Description:  input.Description,
		Amount:       input.Amount,
		Deadline:     input.Deadline,
		Status:       model.MilestoneStatusProposed,
		ProposedBy:   proposerID,
	}

	if err := s.repo.Create(milestone); err != nil {
		logger.Error("Failed to create milestone", err, map[string]interface{}{
			"connection_id": connectionID,
		})
		return nil, err
	}

	// The proposal also shows up in the conversation thread.
	if conversation, convErr := s.conversations.GetConversationByConnectionID(connectionID); convErr == nil {
		_, msgErr := s.conversations.SendMessage(conversation.ID, proposerID, MessageInput{
			Content:     fmt.Sprintf("Milestone proposed: %s", milestone.Title),
			Type:        model.MessageTypeMilestoneProposal,
			MilestoneID: &milestone.ID,
		})
		if msgErr != nil {
			logger.Warn("Failed to post milestone proposal message", map[string]interface{}{
				"milestone_id": milestone.ID,
				"error":        msgErr.Error(),
			})
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyMilestoneEvent(milestone, counterpartyOf(conn, proposerID), model.NotificationTypeMilestoneProposed)
	}

	logger.Info("Milestone proposed", map[string]interface{}{
		"milestone_id":  milestone.ID,
		"connection_id": connectionID,
		"proposed_by":   proposerID,
	})
	return milestone, nil
}

// AgreeMilestone accepts a proposal. Only the counterparty of the proposer
// can agree; agreeing moves the connection into contract.
func (s *milestoneService) AgreeMilestone(milestoneID, callerID uint) (*model.Milestone, error) {
	milestone, conn, err := s.loadWithConnection(milestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusProposed {
		return nil, ErrMilestoneInvalidState
	}
	if milestone.ProposedBy == callerID {
		return nil, ErrMilestoneNotCounterparty
	}

	now := time.Now()
	milestone.Status = model.MilestoneStatusAgreed
	milestone.AgreedBy = &callerID
	milestone.AgreedAt = &now

	if err := s.repo.Update(milestone); err != nil {
		return nil, err
	}

	if _, err := s.connections.AdvanceForMilestones(milestone.ConnectionID); err != nil {
		logger.Warn("Failed to advance connection after milestone agreement", map[string]interface{}{
			"milestone_id": milestoneID,
			"error":        err.Error(),
		})
	}

	if s.notifier != nil {
		s.notifier.NotifyMilestoneEvent(milestone, milestone.ProposedBy, model.NotificationTypeMilestoneAgreed)
	}

	logger.Info("Milestone agreed", map[string]interface{}{
		"milestone_id":  milestoneID,
		"connection_id": conn.ID,
	})
	return milestone, nil
}

// RejectMilestone declines a proposal. Counterparty only.
func (s *milestoneService) RejectMilestone(milestoneID, callerID uint) (*model.Milestone, error) {
	milestone, _, err := s.loadWithConnection(milestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusProposed {
		return nil, ErrMilestoneInvalidState
	}
	if milestone.ProposedBy == callerID {
		return nil, ErrMilestoneNotCounterparty
	}

	milestone.Status = model.MilestoneStatusRejected
	if err := s.repo.Update(milestone); err != nil {
		return nil, err
	}

	logger.Info("Milestone rejected", map[string]interface{}{
		"milestone_id": milestoneID,
	})
	return milestone, nil
}

// CompleteMilestone marks an agreed milestone done. Either party may do it;
// completion can close the connection once every milestone is settled.
func (s *milestoneService) CompleteMilestone(milestoneID, callerID uint) (*model.Milestone, error) {
	milestone, conn, err := s.loadWithConnection(milestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusAgreed {
		return nil, ErrMilestoneInvalidState
	}

	now := time.Now()
	milestone.Status = model.MilestoneStatusCompleted
	milestone.CompletedAt = &now

	if err := s.repo.Update(milestone); err != nil {
		return nil, err
	}

	if _, err := s.connections.AdvanceForMilestones(milestone.ConnectionID); err != nil {
		logger.Warn("Failed to advance connection after milestone completion", map[string]interface{}{
			"milestone_id": milestoneID,
			"error":        err.Error(),
		})
	}

	if s.notifier != nil {
		s.notifier.NotifyMilestoneEvent(milestone, counterpartyOf(conn, callerID), model.NotificationTypeMilestoneCompleted)
	}

	logger.Info("Milestone completed", map[string]interface{}{
		"milestone_id": milestoneID,
	})
	return milestone, nil
}

// CancelMilestone cancels a proposed or agreed milestone. Either party.
func (s *milestoneService) CancelMilestone(milestoneID, callerID uint) (*model.Milestone, error) {
	milestone, _, err := s.loadWithConnection(milestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusProposed && milestone.Status != model.MilestoneStatusAgreed {
		return nil, ErrMilestoneInvalidState
	}

	milestone.Status = model.MilestoneStatusCancelled
	if err := s.repo.Update(milestone); err != nil {
		return nil, err
	}

	if _, err := s.connections.AdvanceForMilestones(milestone.ConnectionID); err != nil {
		logger.Warn("Failed to advance connection after milestone cancellation", map[string]interface{}{
			"milestone_id": milestoneID,
			"error":        err.Error(),
		})
	}

	logger.Info("Milestone cancelled", map[string]interface{}{
		"milestone_id": milestoneID,
	})
	return milestone, nil
}

func (s *milestoneService) GetMilestones(connectionID, callerID uint) ([]model.Milestone, error) {
	conn, err := s.connRepo.FindByIDWithParties(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	if !conn.Involves(callerID) {
		return nil, ErrMilestoneAccessDenied
	}

	return s.repo.FindByConnectionID(connectionID)
}

// RequestExtension opens a deadline-extension request on an agreed milestone.
// At most one pending request per milestone.
func (s *milestoneService) RequestExtension(milestoneID, callerID uint, newDeadline time.Time, reason string) (*model.MilestoneExtension, error) {
	milestone, _, err := s.loadWithConnection(milestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if milestone.Status != model.MilestoneStatusAgreed {
		return nil, ErrMilestoneInvalidState
	}

	pending, err := s.repo.FindPendingExtension(milestoneID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrExtensionPendingExists
	}

	ext := &model.MilestoneExtension{
		MilestoneID: milestoneID,
		RequestedBy: callerID,
		NewDeadline: newDeadline,
		Reason:      reason,
		Status:      model.ExtensionStatusPending,
	}

	if err := s.repo.CreateExtension(ext); err != nil {
		logger.Error("Failed to create extension request", err, map[string]interface{}{
			"milestone_id": milestoneID,
		})
		return nil, err
	}

	logger.Info("Extension requested", map[string]interface{}{
		"extension_id": ext.ID,
		"milestone_id": milestoneID,
	})
	return ext, nil
}

// DecideExtension approves or rejects a pending extension request. Only the
// party that did not request it can decide; approval moves the deadline.
func (s *milestoneService) DecideExtension(extensionID, callerID uint, approve bool) (*model.MilestoneExtension, error) {
	ext, err := s.repo.FindExtensionByID(extensionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExtensionNotFound
		}
		return nil, err
	}

	milestone, _, err := s.loadWithConnection(ext.MilestoneID, callerID)
	if err != nil {
		return nil, err
	}

	if ext.Status != model.ExtensionStatusPending {
		return nil, ErrExtensionInvalidState
	}
	if ext.RequestedBy == callerID {
		return nil, ErrMilestoneNotCounterparty
	}

	now := time.Now()
	ext.DecidedBy = &callerID
	ext.DecidedAt = &now

	if approve {
		ext.Status = model.ExtensionStatusApproved
		milestone.Deadline = &ext.NewDeadline
		if err := s.repo.Update(milestone); err != nil {
			return nil, err
		}
	} else {
		ext.Status = model.ExtensionStatusRejected
	}

	if err := s.repo.UpdateExtension(ext); err != nil {
		return nil, err
	}

	logger.Info("Extension decided", map[string]interface{}{
		"extension_id": extensionID,
		"status":       ext.Status,
	})
	return ext, nil
}

// loadWithConnection fetches a milestone and its connection, verifying the
// caller is a party to the connection.
func (s *milestoneService) loadWithConnection(milestoneID, callerID uint) (*model.Milestone, *model.Connection, error) {
	milestone, err := s.repo.FindByID(milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMilestoneNotFound
		}
		return nil, nil, err
	}

	conn, err := s.connRepo.FindByIDWithParties(milestone.ConnectionID)
	if err != nil {
		return nil, nil, err
	}

	if !conn.Involves(callerID) {
		logger.Warn("Milestone access denied", map[string]interface{}{
			"milestone_id": milestoneID,
			"user_id":      callerID,
		})
		return nil, nil, ErrMilestoneAccessDenied
	}

	return milestone, conn, nil
}

// counterpartyOf returns the other party's user ID on a connection.
// Business must be preloaded.
func counterpartyOf(conn *model.Connection, userID uint) uint {
	if conn.InvestorID == userID {
		return conn.Business.OwnerID
	}
	return conn.InvestorID
}
