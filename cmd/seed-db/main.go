// Command seed-db provisions a database with demo accounts, products, and
// offers for local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/domain/owner"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/repository"
)

type productJSON struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type offerJSON struct {
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsPercentage  bool            `json:"is_percentage"`
	ExpiresAt     time.Time       `json:"expires_at"`
	ProductName   string          `json:"product_name,omitempty"`
}

type seedFile struct {
	Products []productJSON `json:"products"`
	Offers   []offerJSON   `json:"offers"`
}

func main() {
	var (
		databaseURL   string
		seedPath      string
		ownerName     string
		ownerPassword string
		userName      string
		userPassword  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.StringVar(&ownerName, "owner-name", "demo-store", "owner account to create")
	flag.StringVar(&ownerPassword, "owner-password", "", "owner account password (or SHOP_SEED_OWNER_PASSWORD env)")
	flag.StringVar(&userName, "user-name", "demo-user", "user account to create")
	flag.StringVar(&userPassword, "user-password", "", "user account password (or SHOP_SEED_USER_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if ownerPassword == "" {
		ownerPassword = os.Getenv("SHOP_SEED_OWNER_PASSWORD")
	}
	if userPassword == "" {
		userPassword = os.Getenv("SHOP_SEED_USER_PASSWORD")
	}
	if ownerPassword == "" || userPassword == "" {
		slog.Error("account passwords are required: set --owner-password and --user-password or the SHOP_SEED_* env vars")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, ownerName, ownerPassword, userName, userPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, ownerName, ownerPassword, userName, userPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	owners := repository.NewOwnerRepository(pool)
	users := repository.NewUserRepository(pool)
	products := repository.NewProductRepository(pool)
	offers := repository.NewOfferRepository(pool)

	ownerID, err := seedOwner(ctx, owners, ownerName, ownerPassword)
	if err != nil {
		return errors.Wrap(err, "seed owner")
	}

	if err := seedUser(ctx, users, userName, userPassword); err != nil {
		return errors.Wrap(err, "seed user")
	}

	catalog, err := readSeedFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	productIDs, err := seedProducts(ctx, products, ownerID, catalog.Products)
	if err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedOffers(ctx, offers, ownerID, productIDs, catalog.Offers); err != nil {
		return errors.Wrap(err, "seed offers")
	}

	return nil
}

func readSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	var catalog seedFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	return &catalog, nil
}

func seedOwner(ctx context.Context, owners owner.Repository, name, password string) (int64, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}

	o := &owner.Owner{Name: name, PasswordHash: hash}
	switch err := owners.Create(ctx, o); {
	case err == nil:
		slog.Info("created owner", slog.String("name", name), slog.Int64("id", o.ID))
		return o.ID, nil
	case errors.Is(err, owner.ErrNameTaken):
		existing, err := owners.GetByName(ctx, name)
		if err != nil {
			return 0, errors.Wrap(err, "fetch existing owner")
		}
		slog.Info("owner already exists", slog.String("name", name), slog.Int64("id", existing.ID))
		return existing.ID, nil
	default:
		return 0, err
	}
}

func seedUser(ctx context.Context, users user.Repository, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u := &user.User{Username: username, PasswordHash: hash}
	switch err := users.Create(ctx, u); {
	case err == nil:
		slog.Info("created user", slog.String("username", username), slog.Int64("id", u.ID))
		return nil
	case errors.Is(err, user.ErrNameTaken):
		slog.Info("user already exists", slog.String("username", username))
		return nil
	default:
		return err
	}
}

// seedProducts inserts catalog products and returns name to ID mapping for
// offer targeting.
func seedProducts(ctx context.Context, products product.Repository, ownerID int64, items []productJSON) (map[string]int64, error) {
	slog.Info("seeding products", slog.Int("count", len(items)))

	ids := make(map[string]int64, len(items))
	existing, err := products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	for _, p := range existing {
		ids[p.Name] = p.ID
	}

	for _, item := range items {
		if id, ok := ids[item.Name]; ok {
			slog.Info("product already exists", slog.String("name", item.Name), slog.Int64("id", id))
			continue
		}

		p := &product.Product{
			Name:    item.Name,
			Price:   item.Price,
			Stock:   item.Stock,
			OwnerID: ownerID,
		}
		if err := products.Create(ctx, p); err != nil {
			return nil, errors.Wrapf(err, "create product %s", item.Name)
		}
		ids[item.Name] = p.ID

		slog.Info("created product", slog.String("name", item.Name), slog.Int64("id", p.ID))
	}

	return ids, nil
}

func seedOffers(ctx context.Context, offers offer.Repository, ownerID int64, productIDs map[string]int64, items []offerJSON) error {
	slog.Info("seeding offers", slog.Int("count", len(items)))

	for _, item := range items {
		var productID *int64
		if item.ProductName != "" {
			id, ok := productIDs[item.ProductName]
			if !ok {
				return errors.Errorf("offer %s targets unknown product %q", item.Code, item.ProductName)
			}
			productID = &id
		}

		o := &offer.Offer{
			Code:          item.Code,
			DiscountValue: item.DiscountValue,
			IsPercentage:  item.IsPercentage,
			ExpiresAt:     item.ExpiresAt.UTC(),
			ProductID:     productID,
			OwnerID:       ownerID,
		}
		switch err := offers.Create(ctx, o); {
		case err == nil:
			slog.Info("created offer", slog.String("code", item.Code), slog.Int64("id", o.ID))
		case errors.Is(err, offer.ErrCodeTaken):
			slog.Info("offer already exists", slog.String("code", item.Code))
		default:
			return errors.Wrapf(err, "create offer %s", item.Code)
		}
	}

	return nil
}
