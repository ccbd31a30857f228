package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	donorDTO "blood_donation_backend/internals/features/users/donor_profiles/dto"
	recipientDTO "blood_donation_backend/internals/features/users/recipient_profiles/dto"
	userDTO "blood_donation_backend/internals/features/users/user/dto"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

/* ===================== users ===================== */

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Accounts",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Sign up as a donor or recipient",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Sources: cli.EnvVars("BD_NEW_PASSWORD")},
					&cli.StringFlag{Name: "role", Required: true, Usage: "Donor or Recipient"},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					role, err := constants.ParseRole(c.String("role"))
					if err != nil {
						return apperror.ValidationField("users", "user_role", "oneof", err.Error())
					}
					// admins come from the seed only
					if role == constants.RoleAdmin {
						return apperror.Forbidden("users", "admin accounts cannot self-register")
					}
					u, err := a.users.Create(ctx, userDTO.CreateUserRequest{
						Name:     c.String("name"),
						Username: c.String("username"),
						Email:    c.String("email"),
						Password: c.String("password"),
						Role:     role,
					})
					if err != nil {
						return err
					}
					return printJSON(userDTO.FromModel(u))
				}),
			},
			{
				Name:  "list",
				Usage: "List accounts (admin)",
				Flags: actorFlags(
					&cli.StringFlag{Name: "role"},
					&cli.StringFlag{Name: "q", Usage: "matches name, username or email"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "per-page", Value: 25},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					if actor.Role != constants.RoleAdmin {
						return apperror.Forbidden("users", constants.RoleErrorAdmin("list users"))
					}
					f := userDTO.ListUsersFilter{Query: c.String("q")}
					if raw := c.String("role"); raw != "" {
						role, err := constants.ParseRole(raw)
						if err != nil {
							return apperror.ValidationField("users", "user_role", "oneof", err.Error())
						}
						f.Role = &role
					}
					page, err := a.users.List(ctx, f, helper.Params{Page: int(c.Int("page")), PerPage: int(c.Int("per-page"))})
					if err != nil {
						return err
					}
					return printJSON(helper.Page[userDTO.UserResponse]{
						Items: userDTO.FromModelList(page.Items),
						Meta:  page.Meta,
					})
				}),
			},
		},
	}
}

/* ===================== donors ===================== */

func donorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "donors",
		Usage: "Donor profiles",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Attach a donor profile to the acting donor account",
				Flags: actorFlags(
					&cli.StringFlag{Name: "group", Required: true},
					&cli.IntFlag{Name: "age", Required: true},
					&cli.StringFlag{Name: "gender", Required: true, Usage: "Male, Female or Other"},
					&cli.StringFlag{Name: "last-donation", Usage: "YYYY-MM-DD"},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					req := donorDTO.CreateDonorProfileRequest{
						UserID:     actor.UserID,
						BloodGroup: constants.BloodGroup(c.String("group")),
						Age:        int(c.Int("age")),
						Gender:     constants.Gender(c.String("gender")),
					}
					if raw := c.String("last-donation"); raw != "" {
						d, err := time.Parse(time.DateOnly, raw)
						if err != nil {
							return fmt.Errorf("--last-donation: %w", err)
						}
						last := datatypes.Date(d)
						req.LastDonationDate = &last
					}
					m, err := a.donors.Create(ctx, req)
					if err != nil {
						return err
					}
					return printJSON(donorDTO.FromModel(m, a.cfg.Workflow.RecoveryPeriod))
				}),
			},
			{
				Name:  "me",
				Usage: "Show the acting donor's profile and next eligible date",
				Flags: actorFlags(),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					m, err := a.donors.GetByUserID(ctx, actor.UserID)
					if err != nil {
						return err
					}
					if m == nil {
						return apperror.Forbidden("donor_profiles", "acting user has no donor profile")
					}
					return printJSON(donorDTO.FromModel(m, a.cfg.Workflow.RecoveryPeriod))
				}),
			},
		},
	}
}

/* ===================== recipients ===================== */

func recipientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "recipients",
		Usage: "Recipient profiles",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Attach a recipient profile to the acting recipient account",
				Flags: actorFlags(
					&cli.StringFlag{Name: "hospital", Required: true},
					&cli.StringFlag{Name: "patient", Required: true},
					&cli.StringFlag{Name: "group", Required: true},
					&cli.StringFlag{Name: "contact", Required: true},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					m, err := a.recipients.Create(ctx, recipientDTO.CreateRecipientProfileRequest{
						UserID:        actor.UserID,
						HospitalName:  c.String("hospital"),
						PatientName:   c.String("patient"),
						RequiredGroup: constants.BloodGroup(c.String("group")),
						ContactNumber: c.String("contact"),
					})
					if err != nil {
						return err
					}
					return printJSON(m)
				}),
			},
			{
				Name:  "me",
				Flags: actorFlags(),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					m, err := a.recipients.GetByUserID(ctx, actor.UserID)
					if err != nil {
						return err
					}
					if m == nil {
						return apperror.Forbidden("recipient_profiles", "acting user has no recipient profile")
					}
					return printJSON(m)
				}),
			},
		},
	}
}
