package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/google/uuid"
)

type memberService struct {
	BaseService
	repo  portsrepo.MemberRepository
	audit portssvc.AuditSvc
}

// NewMemberService creates the service that registers members from a register file.
func NewMemberService(repo portsrepo.MemberRepository, audit portssvc.AuditSvc) portssvc.MemberRegistrySvc {
	return &memberService{repo: repo, audit: audit}
}

// RegisterMembers saves members that are not yet known by number. Known members keep their
// id and balances so history-derived saldo stays consistent.
func (s *memberService) RegisterMembers(ctx context.Context, members []domain.Member) (*portssvc.MemberLoadResult, error) {
	if s.repo == nil {
		return nil, apperrors.NewComponentUnavailableError("member repository")
	}
	userID := actingUser(ctx, "")
	now := s.Now()
	result := &portssvc.MemberLoadResult{}

	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		number := strings.TrimSpace(m.Number)
		if number == "" || strings.TrimSpace(m.Name) == "" {
			return result, fmt.Errorf("%w: member number and name are required", apperrors.ErrValidation)
		}
		if m.OpeningHutang < 0 || m.OpeningPiutang < 0 {
			return result, fmt.Errorf("%w: member %s has a negative opening balance", apperrors.ErrValidation, number)
		}

		existing, err := s.repo.FindMemberByNumber(ctx, number)
		switch {
		case err == nil:
			s.LogDebug(ctx, "Member already registered", slog.String("member_number", number), slog.String("member_id", existing.ID))
			result.Skipped = append(result.Skipped, number)
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return result, fmt.Errorf("failed to look up member %s: %w", number, err)
		}

		m.Number = number
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Status == "" {
			m.Status = domain.MemberAktif
		}
		m.SaldoHutang = m.OpeningHutang
		m.SaldoPiutang = m.OpeningPiutang
		m.AuditFields = domain.NewAuditFields(userID, now)
		if err := s.repo.SaveMember(ctx, m); err != nil {
			return result, fmt.Errorf("failed to save member %s: %w", number, err)
		}
		result.Created = append(result.Created, m.ID)
	}

	s.LogInfo(ctx, "Members registered", slog.Int("created", len(result.Created)), slog.Int("skipped", len(result.Skipped)))
	if s.audit != nil && len(result.Created) > 0 {
		if err := s.audit.Record(ctx, "members.registered", map[string]any{
			"created": len(result.Created),
			"skipped": len(result.Skipped),
		}); err != nil {
			s.LogError(ctx, err, "Failed to write audit record", slog.String("action", "members.registered"))
		}
	}
	return result, nil
}
