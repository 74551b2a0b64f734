// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	tenantstore "github.com/courseloft/courseloft/internal/app/store/tenants"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// CourseLoft guarantees two records exist before serving traffic: the
// agency-owner tenant (which answers localhost and the bare platform
// domain) and, when configured, a super-admin user.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	tenants := tenantstore.New(deps.CourseLoftMongoDatabase)

	owner, err := tenants.EnsureAgencyOwner(ctx, appCfg.AgencyOwnerName, appCfg.AgencyOwnerSlug)
	if err != nil {
		return fmt.Errorf("ensure agency-owner tenant: %w", err)
	}
	logger.Info("agency-owner tenant ready",
		zap.String("tenant_id", owner.ID.Hex()),
		zap.String("slug", owner.Slug))

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, logger); err != nil {
			return fmt.Errorf("ensure super-admin: %w", err)
		}
	}

	return nil
}

// ensureSuperAdmin promotes the configured user to super-admin, or creates
// the account if it does not exist yet. A created account carries no
// password hash, so it can only sign in through Google OAuth until a
// password is set.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.CourseLoftMongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	if err == userstore.ErrNotFound {
		created, err := users.Create(ctx, models.User{
			FullName:   "Super Admin",
			Email:      email,
			AuthMethod: "google",
			Role:       "super-admin",
		})
		if err != nil {
			return err
		}
		logger.Info("created super-admin user",
			zap.String("user_id", created.ID.Hex()),
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	if u.Role == "super-admin" {
		return nil
	}

	if err := users.UpdateRole(ctx, u.ID, "super-admin"); err != nil {
		return err
	}
	logger.Info("promoted user to super-admin",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", email))
	return nil
}
