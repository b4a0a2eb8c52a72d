package seed

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"github.com/yukikurage/taker-api/internal/services"
)

// InitialAdmin is the account created on first start. An empty Email skips it.
type InitialAdmin struct {
	Email    string
	Password string
	FullName string
}

// Run makes sure the default positions and the initial admin exist.
// Running it again is a no-op.
func Run(positions repository.PositionRepository, users *services.UserService, admin InitialAdmin) error {
	for _, name := range models.DefaultPositions {
		if _, err := positions.Ensure(name); err != nil {
			return fmt.Errorf("failed to seed position %q: %w", name, err)
		}
	}

	if admin.Email == "" {
		slog.Info("No initial admin configured, skipping")
		return nil
	}

	created, err := users.EnsureAdmin(admin.FullName, admin.Email, admin.Password)
	if err != nil {
		return fmt.Errorf("failed to seed initial admin: %w", err)
	}
	if created {
		slog.Info("Created initial admin", "email", admin.Email)
	}
	return nil
}
