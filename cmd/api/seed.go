package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/observability"
	"github.com/openticket/helpdesk/internal/persistence"
	"github.com/openticket/helpdesk/internal/repository"
	"github.com/openticket/helpdesk/internal/service"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

var (
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with test users and tickets",
		RunE:  runSeed,
	}
	seedTickets  int
	seedPassword string
)

var seedTitles = []string{
	"Cannot log in to the portal",
	"Reports page stays blank",
	"Database access request",
	"Printer queue is stuck",
	"Operating system update required",
	"Intermittent network drops",
	"New employee account",
	"Nightly backup failed",
	"Corporate email not receiving external mail",
	"Install analytics software",
	"Monitoring shows wrong server status",
	"Shared drive unreachable",
	"Password reset",
	"Web application returns 500",
	"Scanner on multifunction printer broken",
	"Remote access request",
	"Authentication rejects valid users",
	"Slow database queries",
	"VPN setup for new office",
	"Log pipeline missing events",
}

var seedDepartments = []string{"IT", "HR", "Finance", "Sales", "Marketing", "Operations", "Legal", "Support"}

var seedStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusResolved,
}

func init() {
	seedCmd.Flags().IntVarP(&seedTickets, "tickets", "n", 20, "number of random tickets to create")
	seedCmd.Flags().StringVar(&seedPassword, "password", "changeme", "password for the seeded accounts")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	users := repository.NewUserRepository(pg.PoolHandle())
	tickets := repository.NewTicketRepository(pg.PoolHandle(), users)
	authService := service.NewAuthService(cfg.Auth, users, nil)

	accounts := []*domain.User{
		{Email: "admin@openticket.local", Username: "admin", FirstName: "System", LastName: "Administrator", Role: domain.RoleAdmin, IsActive: true, IsSuperuser: true},
		{Email: "agent@openticket.local", Username: "agent", FirstName: "Joao", Role: domain.RoleAgent, IsActive: true},
		{Email: "technician@openticket.local", Username: "technician", FirstName: "Maria", Role: domain.RoleTechnician, IsActive: true},
	}
	var agents []*domain.User
	for _, account := range accounts {
		user, err := ensureUser(ctx, users, authService, account, seedPassword)
		if err != nil {
			return err
		}
		if user.Role == domain.RoleAgent {
			agents = append(agents, user)
		}
	}

	priorities := domain.Priorities()
	for i := 0; i < seedTickets; i++ {
		creator := agents[rand.IntN(len(agents))]
		ticket := &domain.Ticket{
			Title:       seedTitles[rand.IntN(len(seedTitles))],
			Description: "Seeded ticket for local testing.",
			Department:  seedDepartments[rand.IntN(len(seedDepartments))],
			Priority:    priorities[rand.IntN(len(priorities))],
			Status:      seedStatuses[rand.IntN(len(seedStatuses))],
			CreatedByID: creator.ID,
		}
		if rand.IntN(2) == 0 {
			assignee := agents[rand.IntN(len(agents))].ID
			ticket.AssignedToID = &assignee
		}
		if err := tickets.Create(ctx, ticket); err != nil {
			return fmt.Errorf("seed ticket: %w", err)
		}
	}
	logger.Info("seed complete", zap.Int("users", len(accounts)), zap.Int("tickets", seedTickets))
	return nil
}

func ensureUser(ctx context.Context, users repository.UserRepository, authService *service.AuthService, account *domain.User, password string) (*domain.User, error) {
	existing, err := users.GetByEmail(ctx, account.Email)
	if err == nil {
		return existing, nil
	}
	if apperrors.ToDomainError(err).Code != apperrors.CodeNotFound {
		return nil, err
	}
	if err := authService.CreateUser(ctx, account, password); err != nil {
		return nil, fmt.Errorf("seed user %s: %w", account.Email, err)
	}
	return account, nil
}
