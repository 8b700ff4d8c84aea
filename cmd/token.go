package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/session"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// TokenIssue mints a session token for a phone number.
func (r *Runner) TokenIssue(ctx context.Context, cmd *cli.Command) error {
	phone := cmd.String("phone")
	role := cmd.String("role")

	if phone == "" {
		return fmt.Errorf("%w: phone number required", shared.ErrInvalidInput)
	}

	codec, err := session.NewCodec(r.config.Auth.EncryptionSecret)
	if err != nil {
		return err
	}

	if role == session.RoleAdmin {
		policy := session.NewPolicy(r.config.Auth.AdminPhone, r.config.Migration.AllowedPairs)
		if !policy.IsAdmin(phone) {
			return fmt.Errorf("%w: %s is not the configured administrator", shared.ErrAuthFailed, phone)
		}
	}

	token, err := codec.Issue(phone, role)
	if err != nil {
		return err
	}

	r.logger.Info("session issued", "phone", phone, "role", role)
	return r.writeJSON(map[string]string{
		"phoneNumber":  phone,
		"role":         role,
		"sessionToken": token,
	}, cmd.Bool("pretty"))
}

// TokenVerify validates a session token and prints its claims.
func (r *Runner) TokenVerify(ctx context.Context, cmd *cli.Command) error {
	token := cmd.String("token")
	if token == "" {
		return fmt.Errorf("%w: token required", shared.ErrInvalidInput)
	}

	codec, err := session.NewCodec(r.config.Auth.EncryptionSecret)
	if err != nil {
		return err
	}

	validation := codec.Validate(token)
	if !validation.Valid {
		r.writePlain("✗ Invalid session\n")
		return nil
	}

	r.writePlain("✓ Valid session\n")
	r.writePlain("Phone: %s\n", validation.PhoneNumber)
	r.writePlain("Role: %s\n", validation.Role)
	return nil
}

func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and verify session tokens",
		Commands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Mint a session token for a phone number",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "phone",
						Usage:    "Phone number the token identifies",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Token role (admin or user)",
						Value: session.RoleUser,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.TokenIssue,
			},
			{
				Name:  "verify",
				Usage: "Validate a session token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Session token to validate",
						Required: true,
					},
				},
				Action: r.TokenVerify,
			},
		},
	}
}
