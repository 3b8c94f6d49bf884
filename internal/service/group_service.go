package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/models"
	"shg-service/internal/repository"
	"shg-service/pkg/apperror"
)

// GroupSvc is an implementation of the service.GroupService interface
type GroupSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	validator *validator.Validate
}

// NewGroupService creates a new GroupSvc
func NewGroupService(deps Dependencies) *GroupSvc {
	return &GroupSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		validator: newValidator(),
	}
}

// Create creates a group led by leaderID
func (s *GroupSvc) Create(ctx context.Context, leaderID int, req *models.GroupCreate) (*models.Group, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	group := req.ToGroup(leaderID)

	id, err := s.repos.Group.Create(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"group_id": id, "leader_id": leaderID}).Info("Group created")

	return s.repos.Group.GetByID(ctx, id)
}

// GetByID gets a group by ID
func (s *GroupSvc) GetByID(ctx context.Context, groupID int) (*models.Group, error) {
	return s.repos.Group.GetByID(ctx, groupID)
}

// GetByLeaderID gets the groups a user leads
func (s *GroupSvc) GetByLeaderID(ctx context.Context, leaderID int) ([]*models.Group, error) {
	groups, err := s.repos.Group.GetByLeaderID(ctx, leaderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	return groups, nil
}

// Update changes a group's settings
func (s *GroupSvc) Update(ctx context.Context, groupID int, update *models.GroupUpdate) (*models.Group, error) {
	if err := validateRequest(s.validator, update); err != nil {
		return nil, err
	}

	var group *models.Group
	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		var err error
		group, err = repos.Group.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}

		update.Apply(group)
		if !group.CollectionFrequency.Valid() {
			return apperror.Validation("invalid collection frequency", nil)
		}

		return repos.Group.Update(ctx, group)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("group_id", groupID).Info("Group settings updated")

	return group, nil
}

// Authorize returns the group when userID leads it
func (s *GroupSvc) Authorize(ctx context.Context, groupID, userID int) (*models.Group, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.LeaderID != userID {
		return nil, apperror.Forbidden("only the group leader can manage group %d", groupID)
	}

	return group, nil
}

// AddMember adds a member to a group
func (s *GroupSvc) AddMember(ctx context.Context, groupID int, req *models.MemberCreate) (*models.Member, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	if _, err := s.repos.Group.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	member := req.ToMember(groupID)

	id, err := s.repos.Member.Create(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"group_id": groupID, "member_id": id}).Info("Member added")

	return s.repos.Member.GetByID(ctx, id)
}

// GetMembers gets all members of a group
func (s *GroupSvc) GetMembers(ctx context.Context, groupID int) ([]*models.Member, error) {
	members, err := s.repos.Member.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	return members, nil
}

// GetLateFineRule gets the group's late fine rule
func (s *GroupSvc) GetLateFineRule(ctx context.Context, groupID int) (*models.LateFineRule, error) {
	return s.repos.LateFineRule.GetByGroupID(ctx, groupID)
}

// SetLateFineRule replaces the group's late fine rule
func (s *GroupSvc) SetLateFineRule(ctx context.Context, groupID int, req *models.LateFineRuleInput) (*models.LateFineRule, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	rule, err := req.ToRule(groupID)
	if err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}

	err = s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		if _, err := repos.Group.GetByIDForUpdate(ctx, groupID); err != nil {
			return err
		}
		_, err := repos.LateFineRule.Replace(ctx, rule)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":  groupID,
		"rule_type": rule.RuleType,
		"enabled":   rule.IsEnabled,
	}).Info("Late fine rule saved")

	return s.repos.LateFineRule.GetByGroupID(ctx, groupID)
}

// lateFineRule loads the group's rule, treating a missing rule as no rule
func lateFineRule(ctx context.Context, repos *repository.Repository, groupID int) (*models.LateFineRule, error) {
	rule, err := repos.LateFineRule.GetByGroupID(ctx, groupID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rule, nil
}
