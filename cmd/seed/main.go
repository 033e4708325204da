// Package main seeds a PromptDeck database from a YAML fixture file.
//
// Seeding is idempotent: users are upserted and teams, members, projects
// and prompts that already exist (by name, or by email for members) are
// left untouched. With a session secret configured it prints development
// session tokens for every seeded user.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"promptdeck.io/promptdeck/internal/api/middleware"
	"promptdeck.io/promptdeck/internal/app/modules"
	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/infrastructure"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/pkg/logger"
	"promptdeck.io/promptdeck/internal/repository"
	"promptdeck.io/promptdeck/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "seed.yaml", "fixture file")
	migrate := flag.Bool("migrate", false, "run schema migrations before seeding")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	fx, err := loadFixture(*file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if *migrate || cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	services := modules.NewServices(cfg, repository.New(db.DB), nil)
	logger.Info("Starting data seeding...", zap.String("file", *file))

	sum, err := newSeeder(services, os.Stdout).apply(ctx, fx)
	if err != nil {
		return err
	}
	logger.Info("Data seeding completed successfully",
		zap.Int("users", sum.Users),
		zap.Int("teams_created", sum.Teams),
		zap.Int("members_added", sum.Members),
		zap.Int("projects_created", sum.Projects),
		zap.Int("prompts_created", sum.Prompts),
	)

	if cfg.Security.SessionSecret != "" {
		return printTokens(os.Stdout, modules.NewJWTConfig(cfg), fx.Users)
	}
	return nil
}

// Fixture is the seed file layout.
type Fixture struct {
	Users []UserFixture `yaml:"users"`
	Teams []TeamFixture `yaml:"teams"`
}

type UserFixture struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// TeamFixture is created by Owner, who becomes its ADMIN.
type TeamFixture struct {
	Name     string           `yaml:"name"`
	Owner    string           `yaml:"owner"`
	Members  []MemberFixture  `yaml:"members"`
	Projects []ProjectFixture `yaml:"projects"`
}

type MemberFixture struct {
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type ProjectFixture struct {
	Name    string          `yaml:"name"`
	Prompts []PromptFixture `yaml:"prompts"`
}

type PromptFixture struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return parseFixture(data)
}

func parseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	known := make(map[string]bool, len(fx.Users))
	for _, u := range fx.Users {
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("fixture user needs id and email: %+v", u)
		}
		known[u.ID] = true
	}
	for _, t := range fx.Teams {
		if !known[t.Owner] {
			return nil, fmt.Errorf("team %q: owner %q is not a fixture user", t.Name, t.Owner)
		}
	}
	return &fx, nil
}

type summary struct {
	Users    int
	Teams    int
	Members  int
	Projects int
	Prompts  int
}

type seeder struct {
	svc *service.Services
	out io.Writer
}

func newSeeder(svc *service.Services, out io.Writer) *seeder {
	return &seeder{svc: svc, out: out}
}

func (s *seeder) apply(ctx context.Context, fx *Fixture) (summary, error) {
	var sum summary
	for _, u := range fx.Users {
		if _, err := s.svc.Users.Register(ctx, u.ID, u.Email, u.Name); err != nil {
			return sum, fmt.Errorf("register user %s: %w", u.ID, err)
		}
		sum.Users++
	}
	for _, t := range fx.Teams {
		if err := s.applyTeam(ctx, t, &sum); err != nil {
			return sum, fmt.Errorf("team %q: %w", t.Name, err)
		}
	}
	return sum, nil
}

func (s *seeder) applyTeam(ctx context.Context, t TeamFixture, sum *summary) error {
	teams, err := s.svc.Teams.List(ctx, t.Owner)
	if err != nil {
		return err
	}
	var teamID string
	for _, existing := range teams {
		if existing.Name == t.Name {
			teamID = existing.ID
			break
		}
	}
	if teamID == "" {
		created, err := s.svc.Teams.Create(ctx, t.Owner, t.Name)
		if err != nil {
			return err
		}
		teamID = created.ID
		sum.Teams++
		fmt.Fprintf(s.out, "team %-24s %s  api_key=%s\n", t.Name, teamID, created.APIKey)
	}

	for _, m := range t.Members {
		_, err := s.svc.Members.Add(ctx, t.Owner, teamID, m.Email, m.Role)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeMemberExists {
			continue
		}
		if err != nil {
			return fmt.Errorf("add member %s: %w", m.Email, err)
		}
		sum.Members++
	}

	projects, err := s.svc.Projects.List(ctx, t.Owner, teamID)
	if err != nil {
		return err
	}
	for _, p := range t.Projects {
		var projectID string
		for _, existing := range projects {
			if existing.Name == p.Name {
				projectID = existing.ID
				break
			}
		}
		if projectID == "" {
			created, err := s.svc.Projects.Create(ctx, t.Owner, teamID, p.Name)
			if err != nil {
				return fmt.Errorf("project %q: %w", p.Name, err)
			}
			projectID = created.ID
			sum.Projects++
			fmt.Fprintf(s.out, "project %-21s %s  api_key=%s\n", p.Name, projectID, created.APIKey)
		}
		if err := s.applyPrompts(ctx, t.Owner, projectID, p.Prompts, sum); err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
	}
	return nil
}

func (s *seeder) applyPrompts(ctx context.Context, owner, projectID string, prompts []PromptFixture, sum *summary) error {
	existing, err := s.svc.Prompts.List(ctx, owner, projectID)
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[p.Name] = true
	}
	for _, p := range prompts {
		if names[p.Name] {
			continue
		}
		if _, err := s.svc.Prompts.Create(ctx, owner, projectID, p.Name, p.Text); err != nil {
			return fmt.Errorf("prompt %q: %w", p.Name, err)
		}
		names[p.Name] = true
		sum.Prompts++
	}
	return nil
}

func printTokens(out io.Writer, cfg middleware.JWTConfig, users []UserFixture) error {
	for _, u := range users {
		token, expires, err := middleware.GenerateToken(cfg, u.ID, u.Email, u.Name)
		if err != nil {
			return fmt.Errorf("token for %s: %w", u.ID, err)
		}
		fmt.Fprintf(out, "token %s (%s, expires %s)\n  %s\n", u.ID, u.Email, expires.Format("2006-01-02 15:04"), token)
	}
	return nil
}
