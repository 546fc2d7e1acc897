package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/assessment/domain"
	"github.com/smallbiznis/pulse/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("assessment.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (domain.Result, error) {
	return s.RecordTx(ctx, s.db, req)
}

func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, req domain.RecordRequest) (domain.Result, error) {
	if req.InvitationID == 0 {
		return domain.Result{}, domain.ErrInvalidInvitation
	}
	toolID := strings.TrimSpace(req.ToolID)
	if toolID == "" {
		return domain.Result{}, domain.ErrInvalidTool
	}

	result := domain.Result{
		ID:             s.genID.Generate(),
		InvitationID:   req.InvitationID,
		ToolID:         toolID,
		SubmitterName:  strings.TrimSpace(req.SubmitterName),
		SubmitterEmail: strings.ToLower(strings.TrimSpace(req.SubmitterEmail)),
		Responses:      jsonMap(req.Responses),
		Scores:         jsonMap(req.Scores),
		CompletedAt:    s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, &result); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

func (s *Service) ListByInvitation(ctx context.Context, invitationID snowflake.ID) ([]domain.Result, error) {
	if invitationID == 0 {
		return nil, domain.ErrInvalidInvitation
	}

	items, err := s.repo.ListByInvitation(ctx, s.db, invitationID)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		results = append(results, *item)
	}
	return results, nil
}

func jsonMap(values map[string]any) datatypes.JSONMap {
	if values == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(values)
}
