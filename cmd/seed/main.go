// Command seed populates a running server with demo coaches and athletes by
// registering each one and submitting its onboarding through the public API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DaniAlencarrr/Athletix/internal/domain"
	pkgconfig "github.com/DaniAlencarrr/Athletix/pkg/config"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/logger"
	"github.com/DaniAlencarrr/Athletix/pkg/slug"
)

type config struct {
	BaseURL  string `env:"ATHLETIX_URL" envDefault:"http://localhost:8080"`
	Password string `env:"SEED_PASSWORD" envDefault:"athletix-demo-1"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// Interval spaces out accounts so the login rate limiter is not hit.
	Interval time.Duration `env:"SEED_INTERVAL" envDefault:"1s"`
}

// person is one demo account plus its onboarding answers.
type person struct {
	Name       string
	Submission map[string]any
}

func base(birth, bio, street, city, state, zip string) map[string]any {
	return map[string]any{
		"birthDate": birth,
		"bio":       bio,
		"street":    street,
		"city":      city,
		"state":     state,
		"zipCode":   zip,
		"country":   "Brasil",
	}
}

func coach(name, birth, city, state string, rate float64, experience, certs string) person {
	sub := base(birth, "Coach based in "+city+", working with amateur athletes.", "Avenida Central 100", city, state, "50000-000")
	sub["userType"] = string(domain.RoleCoach)
	sub["experience"] = experience
	sub["hourlyRate"] = rate
	sub["certifications"] = certs
	return person{Name: name, Submission: sub}
}

func athlete(name, birth, city, state, sport string, height, weight float64) person {
	sub := base(birth, "Amateur "+sport+" athlete training for the next season.", "Rua do Porto 22", city, state, "53000-000")
	sub["userType"] = string(domain.RoleAthlete)
	sub["sport"] = sport
	sub["height"] = height
	sub["weight"] = weight
	return person{Name: name, Submission: sub}
}

var people = []person{
	coach("João Pedro Almeida", "1982-03-11", "Recife", "PE", 140, "Fifteen years coaching marathon runners", "CREF 001122-G/PE"),
	coach("Mariana Lopes", "1988-09-02", "São Paulo", "SP", 180, "Former triathlete, coaching since 2012", "CREF 334455-G/SP"),
	coach("Rafael Souza", "1979-12-20", "Florianópolis", "SC", 120, "Open water and pool swimming specialist", "CREF 778899-G/SC"),
	athlete("Ana Beatriz Costa", "1998-04-02", "Olinda", "PE", "running", 165, 58),
	athlete("Lucas Ferreira", "2001-07-19", "Campinas", "SP", "cycling", 181, 74),
	athlete("Camila Rocha", "1995-01-30", "Curitiba", "PR", "swimming", 170, 62),
}

type client struct {
	http    *http.Client
	baseURL string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *client) post(ctx context.Context, path, token string, body, dst any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("POST %s: HTTP %d: %s", path, resp.StatusCode, payload)
	}
	if resp.StatusCode >= 400 {
		if env.Error != nil && env.Error.Code == "ALREADY_EXISTS" {
			return apperrors.ErrAlreadyExists
		}
		if resp.StatusCode == http.StatusConflict {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("POST %s: HTTP %d: %s", path, resp.StatusCode, payload)
	}
	if dst != nil {
		return json.Unmarshal(env.Data, dst)
	}
	return nil
}

type session struct {
	Token string `json:"token"`
}

// seedOne registers p, or logs in when the email is taken, then completes
// onboarding. Accounts that already onboarded are left as they are.
func seedOne(ctx context.Context, c *client, cfg config, p person) (string, error) {
	email := slug.Generate(p.Name) + "@demo.athletix.dev"
	var sess session
	err := c.post(ctx, "/api/auth/register", "", map[string]string{
		"name": p.Name, "email": email, "password": cfg.Password,
	}, &sess)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		err = c.post(ctx, "/api/auth/login", "", map[string]string{
			"email": email, "password": cfg.Password,
		}, &sess)
	}
	if err != nil {
		return email, err
	}

	err = c.post(ctx, "/api/onboarding", sess.Token, p.Submission, nil)
	if errors.Is(err, apperrors.ErrConflict) {
		return email, nil
	}
	return email, err
}

func main() {
	if _, err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var cfg config
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("athletix-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := &client{http: &http.Client{Timeout: 10 * time.Second}, baseURL: strings.TrimRight(cfg.BaseURL, "/")}

	failed := 0
	for i, p := range people {
		if i > 0 {
			select {
			case <-ctx.Done():
				log.Warn("seed interrupted", slog.Int("done", i))
				os.Exit(1)
			case <-time.After(cfg.Interval):
			}
		}
		email, err := seedOne(ctx, c, cfg, p)
		if err != nil {
			failed++
			log.Error("seed failed", slog.String("email", email), slog.String("error", err.Error()))
			continue
		}
		log.Info("seeded", slog.String("email", email), slog.Any("role", p.Submission["userType"]))
	}

	log.Info("seed finished", slog.Int("total", len(people)), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}
