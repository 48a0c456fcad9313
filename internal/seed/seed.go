package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// File is the YAML layout of a seed file. Items reference their owner by email.
type File struct {
	Users []User `yaml:"users"`
	Items []Item `yaml:"items"`
}

type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
	OwnerEmail  string `yaml:"owner_email"`
}

// Result counts what Apply did.
type Result struct {
	UsersCreated int
	UsersSkipped int
	ItemsCreated int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates the listed users and their items through the services. A user whose
// email is already registered is skipped together with their items, so reruns are
// idempotent.
func Apply(ctx context.Context, f *File, users domain.UserService, items domain.ItemService, logger *zerolog.Logger) (Result, error) {
	var res Result
	owners := make(map[string]int64, len(f.Users))

	for _, u := range f.Users {
		created, err := users.CreateUser(ctx, &models.User{Name: u.Name, Email: u.Email})
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Debug().Str("email", u.Email).Msg("seed user exists, skipping")
			res.UsersSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		owners[u.Email] = created.ID
		res.UsersCreated++
	}

	for _, it := range f.Items {
		ownerID, ok := owners[it.OwnerEmail]
		if !ok {
			continue
		}
		_, err := items.CreateItem(ctx, ownerID, &models.Item{
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
		})
		if err != nil {
			return res, fmt.Errorf("seed item %s: %w", it.Name, err)
		}
		res.ItemsCreated++
	}

	logger.Info().
		Int("users", res.UsersCreated).
		Int("skipped", res.UsersSkipped).
		Int("items", res.ItemsCreated).
		Msg("seed data loaded")
	return res, nil
}

// FromFile loads path and applies it.
func FromFile(ctx context.Context, path string, users domain.UserService, items domain.ItemService, logger *zerolog.Logger) (Result, error) {
	f, err := Load(path)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, f, users, items, logger)
}
