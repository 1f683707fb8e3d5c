package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store  storage.Store
	logger *slog.Logger
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// CreateGroup creates a new group. The caller always becomes a member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	s.logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := s.buildGroup(ctx, userID, req.Msg.Name, req.Msg.Kind, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "kind", group.Kind)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		s.logger.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		s.logger.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	s.logger.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup replaces name, kind and members of a group the caller belongs to.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	s.logger.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	existing, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := s.buildGroup(ctx, userID, req.Msg.Name, req.Msg.Kind, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	group.ID = existing.ID
	group.CreatedAt = existing.CreatedAt

	if err := s.checkRemovedMembers(ctx, existing, group); err != nil {
		s.logger.Warn("UpdateGroup rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.logger.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group with its transactions and settlements.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	s.logger.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	if _, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// checkRemovedMembers rejects dropping a member who is still a payer or split
// member of a live transaction, or a party to a recorded settlement.
func (s *GroupService) checkRemovedMembers(ctx context.Context, existing, updated *models.Group) error {
	removed := make(map[string]bool)
	for _, m := range existing.Members {
		if !updated.HasMember(m.UserID) {
			removed[m.UserID] = true
		}
	}
	if len(removed) == 0 {
		return nil
	}

	txns, err := s.store.ListTransactionsByGroup(ctx, existing.ID)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if removed[txn.PayerID] {
			return fmt.Errorf("%s: %w", txn.PayerID, ErrMemberInUse)
		}
		for _, split := range txn.Splits {
			if removed[split.UserID] {
				return fmt.Errorf("%s: %w", split.UserID, ErrMemberInUse)
			}
		}
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, existing.ID)
	if err != nil {
		return err
	}
	for _, st := range settlements {
		for _, id := range []string{st.FromUserID, st.ToUserID} {
			if removed[id] {
				return fmt.Errorf("%s: %w", id, ErrMemberInUse)
			}
		}
	}
	return nil
}

// buildGroup validates group fields and resolves member names. The caller
// is put first if missing from members.
func (s *GroupService) buildGroup(ctx context.Context, userID, name, kind string, members []api.Member) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("group name required")
	}

	switch kind {
	case "":
		kind = models.GroupKindGroup
	case models.GroupKindTrip, models.GroupKindGroup:
	default:
		return nil, invalidArgument("unknown group kind %q", kind)
	}

	resolved, err := resolveMembers(ctx, s.store, userID, members)
	if err != nil {
		return nil, err
	}

	return &models.Group{Name: name, Kind: kind, Members: resolved}, nil
}

// resolveMembers validates member ids and fills in missing names from
// registered users, falling back to the id.
func resolveMembers(ctx context.Context, users storage.UserStore, callerID string, members []api.Member) ([]models.Member, error) {
	seen := make(map[string]bool, len(members)+1)
	var out []models.Member
	if !containsMember(members, callerID) {
		out = append(out, models.Member{UserID: callerID})
		seen[callerID] = true
	}

	for _, m := range members {
		id := strings.TrimSpace(m.UserID)
		if id == "" {
			return nil, invalidArgument("member user_id required")
		}
		if seen[id] {
			return nil, invalidArgument("duplicate member %s", id)
		}
		seen[id] = true
		out = append(out, models.Member{UserID: id, Name: strings.TrimSpace(m.Name)})
	}

	ids := make([]string, 0, len(out))
	for _, m := range out {
		if m.Name == "" {
			ids = append(ids, m.UserID)
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	registered, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Name != "" {
			continue
		}
		if user, ok := registered[out[i].UserID]; ok {
			out[i].Name = user.DisplayName
		} else {
			out[i].Name = out[i].UserID
		}
	}
	return out, nil
}

func containsMember(members []api.Member, userID string) bool {
	for _, m := range members {
		if strings.TrimSpace(m.UserID) == userID {
			return true
		}
	}
	return false
}
