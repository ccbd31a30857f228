package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"blood_donation_backend/internals/configs"
	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	stockDTO "blood_donation_backend/internals/features/blood_banks/blood_stocks/dto"
	stockService "blood_donation_backend/internals/features/blood_banks/blood_stocks/service"
	notifDTO "blood_donation_backend/internals/features/home/notifications/dto"
	notifService "blood_donation_backend/internals/features/home/notifications/service"
	requestService "blood_donation_backend/internals/features/requests/blood_requests/service"
	linkService "blood_donation_backend/internals/features/requests/donor_request_links/service"
	"blood_donation_backend/internals/features/requests/fulfillment/dto"
	fulfillment "blood_donation_backend/internals/features/requests/fulfillment/service"
	donorService "blood_donation_backend/internals/features/users/donor_profiles/service"
	recipientService "blood_donation_backend/internals/features/users/recipient_profiles/service"
	userService "blood_donation_backend/internals/features/users/user/service"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/dbtime"
	"blood_donation_backend/internals/metrics"
	routes "blood_donation_backend/internals/route"
	"blood_donation_backend/internals/seeds"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "blood-donation",
		Usage: "Blood donation store and request workflow",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			serveCommand(),
			usersCommand(),
			donorsCommand(),
			recipientsCommand(),
			requestsCommand(),
			stockCommand(),
			notificationsCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

/* ===================== bootstrap ===================== */

type app struct {
	cfg           configs.AppConfig
	db            *gorm.DB
	validator     *helper.Validator
	registry      *prometheus.Registry
	metrics       *metrics.Recorder
	users         *userService.UserService
	donors        *donorService.DonorProfileService
	recipients    *recipientService.RecipientProfileService
	stocks        *stockService.BloodStockService
	requests      *requestService.BloodRequestService
	links         *linkService.DonorRequestLinkService
	notifications *notifService.NotificationService
	fulfillment   *fulfillment.FulfillmentService

	// serving is set by serve; its registry is scraped, not pushed.
	serving bool
}

// openApp connects, migrates and wires every service.
func openApp(ctx context.Context) (*app, error) {
	configs.LoadEnv()
	cfg := configs.Load()

	db, err := database.ConnectDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		database.Close(db)
		return nil, err
	}

	v := helper.NewValidator(dbtime.SystemClock{})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return &app{
		cfg:           cfg,
		db:            db,
		validator:     v,
		registry:      reg,
		metrics:       m,
		users:         userService.NewUserService(db, v, cfg.BcryptCost),
		donors:        donorService.NewDonorProfileService(db, v),
		recipients:    recipientService.NewRecipientProfileService(db, v),
		stocks:        stockService.NewBloodStockService(db, v),
		requests:      requestService.NewBloodRequestService(db, v),
		links:         linkService.NewDonorRequestLinkService(db, v),
		notifications: notifService.NewNotificationService(db, v),
		fulfillment:   fulfillment.NewFulfillmentService(db, v, cfg.Workflow, m),
	}, nil
}

func (a *app) Close() { database.Close(a.db) }

// withApp opens the app for one command and closes it afterwards.
func withApp(fn func(ctx context.Context, c *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		err = report(fn(ctx, c, a))
		a.push(ctx, c)
		return err
	}
}

// push sends this run's counters to the Pushgateway. A failed push is logged
// and never fails the command.
func (a *app) push(ctx context.Context, c *cli.Command) {
	if a.serving || a.cfg.Metrics.PushURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Metrics.PushTimeout)
	defer cancel()
	command := strings.ReplaceAll(strings.TrimPrefix(c.FullName(), c.Root().Name+" "), " ", "_")
	if err := metrics.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job, command, a.registry); err != nil {
		log.Printf("[METRICS] push %s failed: %v", command, err)
	}
}

// report prefixes application errors with their kind so scripts can grep for it.
func report(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", appErr.Kind, err)
	}
	return err
}

/* ===================== actor ===================== */

func actorFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "login", Required: true, Usage: "username or email of the acting user"},
		&cli.StringFlag{Name: "password", Sources: cli.EnvVars("BD_PASSWORD"), Usage: "password of the acting user"},
	}, flags...)
}

// actor authenticates the caller; the workflow re-checks role and ownership.
func (a *app) actor(ctx context.Context, c *cli.Command) (dto.Actor, error) {
	u, err := a.users.VerifyPassword(ctx, c.String("login"), c.String("password"))
	if err != nil {
		return dto.Actor{}, err
	}
	return dto.Actor{UserID: u.UserID, Role: u.UserRole}, nil
}

/* ===================== commands ===================== */

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the schema",
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			log.Println("✅ schema up to date")
			return nil
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Bootstrap the admin account and reference blood banks",
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			return seeds.RunAllSeeds(ctx, a.db, a.validator, a.cfg)
		}),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose /metrics and /healthz until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":9090", Sources: cli.EnvVars("METRICS_ADDR")},
		},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			return serve(ctx, a, c.String("addr"))
		}),
	}
}

func serve(ctx context.Context, a *app, addr string) error {
	a.serving = true
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	dbName := a.cfg.DB.Name
	if dbName == "" {
		dbName = a.cfg.DB.Driver
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, dbName),
		metrics.NewInventoryCollector(a.inventory, a.cfg.Metrics.PushTimeout),
	)

	srv := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.BaseRoutes(srv, a.db, a.registry)

	srv.Server().ReadTimeout = 15 * time.Second
	srv.Server().WriteTimeout = 30 * time.Second
	srv.Server().IdleTimeout = 90 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on %s", addr)
		errCh <- srv.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.ShutdownWithContext(shutdownCtx)
}

// inventory reads stock levels and request counts for one scrape.
func (a *app) inventory(ctx context.Context) (metrics.Snapshot, error) {
	levels, err := a.stocks.Levels(ctx)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	counts, err := a.requests.CountByStatus(ctx)
	if err != nil {
		return metrics.Snapshot{}, err
	}

	snap := metrics.Snapshot{
		Stock:    make([]metrics.StockLevel, 0, len(levels)),
		Requests: make(map[string]int64, len(counts)),
	}
	for _, l := range levels {
		snap.Stock = append(snap.Stock, metrics.StockLevel{
			BankID: l.BloodStockBankID,
			Group:  string(l.BloodStockGroup),
			Units:  l.BloodStockUnits,
		})
	}
	for status, n := range counts {
		snap.Requests[string(status)] = n
	}
	return snap, nil
}

func requestsCommand() *cli.Command {
	return &cli.Command{
		Name:  "requests",
		Usage: "Blood request workflow",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit a blood request and notify matching donors",
				Flags: actorFlags(
					&cli.UintFlag{Name: "recipient-id", Usage: "defaults to the acting recipient"},
					&cli.StringFlag{Name: "group", Required: true, Usage: "A+, A-, B+, B-, AB+, AB-, O+, O-"},
					&cli.IntFlag{Name: "quantity", Value: 1},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					res, err := a.fulfillment.SubmitBloodRequest(ctx, actor, dto.SubmitBloodRequestInput{
						RecipientID: uint(c.Uint("recipient-id")),
						BloodGroup:  constants.BloodGroup(c.String("group")),
						Quantity:    int(c.Int("quantity")),
					})
					if err != nil {
						return err
					}
					return printJSON(res)
				}),
			},
			{
				Name:  "respond",
				Usage: "Accept or decline a matched request as a donor",
				Flags: actorFlags(
					&cli.UintFlag{Name: "request-id", Required: true},
					&cli.UintFlag{Name: "donor-id", Required: true},
					&cli.BoolFlag{Name: "accept"},
					&cli.UintFlag{Name: "bank-id", Usage: "required with --accept"},
					&cli.StringFlag{Name: "at", Usage: "appointment time, RFC3339; required with --accept"},
					&cli.StringFlag{Name: "remarks"},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					in := dto.RespondInput{
						RequestID:   uint(c.Uint("request-id")),
						DonorID:     uint(c.Uint("donor-id")),
						Accept:      c.Bool("accept"),
						BloodBankID: uint(c.Uint("bank-id")),
					}
					if raw := c.String("at"); raw != "" {
						at, err := time.Parse(time.RFC3339, raw)
						if err != nil {
							return fmt.Errorf("--at: %w", err)
						}
						in.AppointmentAt = at
					}
					if r := c.String("remarks"); r != "" {
						in.Remarks = &r
					}
					res, err := a.fulfillment.RespondToRequest(ctx, actor, in)
					if err != nil {
						return err
					}
					return printJSON(res)
				}),
			},
			{
				Name:  "offers",
				Usage: "List the requests the acting donor was matched to",
				Flags: actorFlags(),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					donor, err := a.donors.GetByUserID(ctx, actor.UserID)
					if err != nil {
						return err
					}
					if donor == nil {
						return apperror.Forbidden("donor_request_links", "acting user has no donor profile")
					}
					links, err := a.links.ListByDonor(ctx, donor.DonorProfileID)
					if err != nil {
						return err
					}
					return printJSON(links)
				}),
			},
			requestActionCommand("rematch", "Notify newly eligible donors of a pending request",
				func(ctx context.Context, a *app, actor dto.Actor, id uint) (any, error) {
					return a.fulfillment.RematchRequest(ctx, actor, id)
				}),
			requestActionCommand("fulfill", "Consume stock and complete an approved request",
				func(ctx context.Context, a *app, actor dto.Actor, id uint) (any, error) {
					return a.fulfillment.FulfillRequest(ctx, actor, id)
				}),
			requestActionCommand("cancel", "Cancel a pending or approved request",
				func(ctx context.Context, a *app, actor dto.Actor, id uint) (any, error) {
					return a.fulfillment.CancelRequest(ctx, actor, id)
				}),
			requestActionCommand("reject", "Reject a pending request",
				func(ctx context.Context, a *app, actor dto.Actor, id uint) (any, error) {
					return a.fulfillment.RejectRequest(ctx, actor, id)
				}),
		},
	}
}

func requestActionCommand(name, usage string, do func(ctx context.Context, a *app, actor dto.Actor, id uint) (any, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: actorFlags(&cli.UintFlag{Name: "request-id", Required: true}),
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			actor, err := a.actor(ctx, c)
			if err != nil {
				return err
			}
			out, err := do(ctx, a, actor, uint(c.Uint("request-id")))
			if err != nil {
				return err
			}
			return printJSON(out)
		}),
	}
}

func stockCommand() *cli.Command {
	return &cli.Command{
		Name:  "stock",
		Usage: "Blood bank inventory",
		Commands: []*cli.Command{
			{
				Name:  "restock",
				Usage: "Add units of one group to a bank",
				Flags: actorFlags(
					&cli.UintFlag{Name: "bank-id", Required: true},
					&cli.StringFlag{Name: "group", Required: true},
					&cli.IntFlag{Name: "units", Required: true},
				),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					if actor.Role != constants.RoleAdmin {
						return apperror.Forbidden("blood_stocks", constants.RoleErrorAdmin("restock"))
					}
					s, err := a.stocks.Restock(ctx, uint(c.Uint("bank-id")), constants.BloodGroup(c.String("group")), int(c.Int("units")))
					if err != nil {
						return err
					}
					return printJSON(s)
				}),
			},
			{
				Name:  "list",
				Usage: "List stock rows, optionally only those running low",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "bank-id"},
					&cli.IntFlag{Name: "below", Usage: "only rows with fewer units"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "per-page", Value: 25},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					f := stockDTO.ListBloodStocksFilter{BelowUnits: int(c.Int("below"))}
					if id := uint(c.Uint("bank-id")); id != 0 {
						f.BankID = &id
					}
					page, err := a.stocks.List(ctx, f, helper.Params{Page: int(c.Int("page")), PerPage: int(c.Int("per-page"))})
					if err != nil {
						return err
					}
					return printJSON(page)
				}),
			},
		},
	}
}

func notificationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "notifications",
		Usage: "Read the acting user's notifications",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Flags: actorFlags(&cli.BoolFlag{Name: "unread"}, &cli.IntFlag{Name: "page", Value: 1}),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					page, err := a.notifications.ListByUser(ctx,
						notifDTO.ListNotificationsFilter{UserID: actor.UserID, UnreadOnly: c.Bool("unread")},
						helper.Params{Page: int(c.Int("page"))})
					if err != nil {
						return err
					}
					return printJSON(page)
				}),
			},
			{
				Name:  "read",
				Flags: actorFlags(&cli.UintFlag{Name: "id", Required: true}),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					n, err := a.notifications.GetByID(ctx, uint(c.Uint("id")))
					if err != nil {
						return err
					}
					if n == nil || n.NotificationUserID != actor.UserID {
						return apperror.NotFound("notification_logs", uint(c.Uint("id")))
					}
					return a.notifications.MarkRead(ctx, n.NotificationID)
				}),
			},
			{
				Name:  "read-all",
				Flags: actorFlags(),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					n, err := a.notifications.MarkAllRead(ctx, actor.UserID)
					if err != nil {
						return err
					}
					return printJSON(map[string]int64{"marked": n})
				}),
			},
			{
				Name:  "unread-count",
				Flags: actorFlags(),
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					actor, err := a.actor(ctx, c)
					if err != nil {
						return err
					}
					n, err := a.notifications.UnreadCount(ctx, actor.UserID)
					if err != nil {
						return err
					}
					return printJSON(map[string]int64{"unread": n})
				}),
			},
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
