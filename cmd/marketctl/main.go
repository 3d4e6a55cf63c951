// Command marketctl is a terminal shopper for the local market API. It keeps
// a single-shop cart between runs, in Redis when REDIS_URL is set and in a
// JSON file otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/local_market/pkg/cart"
	"github.com/Skotchmaster/local_market/pkg/client"
	"github.com/Skotchmaster/local_market/pkg/config"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

const usage = `usage: marketctl <command> [flags]

commands:
  shops     [-city C] [-category C] [-near LAT,LNG -km N]
  products  -shop ID [-category C]
  add       -product ID [-qty N] [-switch]
  remove    -product ID
  cart
  checkout  -pickup RFC3339
  orders    [-shop ID]
  status    -order ID -to STATUS

env: MARKET_API (default http://localhost:8080), MARKET_EMAIL, MARKET_PASSWORD,
     MARKET_CART_KEY (default "default"), REDIS_URL
`

func main() {
	_ = godotenv.Load()
	log := logging.New(config.EnvDefault("LOG_LEVEL", "warn"), "development")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStorage()
	if err != nil {
		log.Fatalw("cart_storage_error", "error", err)
	}

	app := &app{
		api:   client.New(config.EnvDefault("MARKET_API", "http://localhost:8080")),
		store: store,
		key:   config.EnvDefault("MARKET_CART_KEY", "default"),
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		var authErr *client.AuthRequiredError
		if errors.As(err, &authErr) {
			fmt.Fprintf(os.Stderr, "login required for %s: set MARKET_EMAIL and MARKET_PASSWORD\n", authErr.Next)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openStorage() (cart.Storage, error) {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return cart.NewRedisStorageFromURL(url, cart.DefaultTTL)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &cart.FileStorage{Dir: filepath.Join(dir, "local_market", "carts")}, nil
}

type app struct {
	api   *client.Client
	store cart.Storage
	key   string
}

func (a *app) login(ctx context.Context) error {
	email, password := os.Getenv("MARKET_EMAIL"), os.Getenv("MARKET_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	_, err := a.api.Login(ctx, email, password)
	return err
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	city := fs.String("city", "", "")
	category := fs.String("category", "", "")
	near := fs.String("near", "", "")
	km := fs.Float64("km", 10, "")
	shop := fs.String("shop", "", "")
	product := fs.String("product", "", "")
	qty := fs.Int("qty", 1, "")
	switchShop := fs.Bool("switch", false, "")
	pickup := fs.String("pickup", "", "")
	order := fs.String("order", "", "")
	to := fs.String("to", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer out.Flush()

	switch cmd {
	case "shops":
		shops, err := a.api.ListShops(ctx, *city, *category)
		if err != nil {
			return err
		}
		if *near != "" {
			lat, lng, err := parseLatLng(*near)
			if err != nil {
				return err
			}
			shops = client.FilterByDistance(shops, lat, lng, *km)
		}
		for _, s := range shops {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s-%s\n", s.ID, s.Name, s.Address.City, s.OpeningTime, s.ClosingTime)
		}

	case "products":
		shopID, err := uuid.Parse(*shop)
		if err != nil {
			return fmt.Errorf("-shop: %w", err)
		}
		items, err := a.api.ListProducts(ctx, shopID, *category)
		if err != nil {
			return err
		}
		for _, p := range items {
			fmt.Fprintf(out, "%s\t%s\t%s\t%d in stock\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}

	case "add":
		id, err := uuid.Parse(*product)
		if err != nil {
			return fmt.Errorf("-product: %w", err)
		}
		p, err := a.api.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		c, err := a.store.Load(ctx, a.key)
		if err != nil {
			return err
		}
		c, err = c.Add(cart.Item{
			ProductID: p.ID,
			ShopID:    p.Shop,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  *qty,
		}, *switchShop)
		if errors.Is(err, cart.ErrShopMismatch) {
			return errors.New("cart holds items from another shop; pass -switch to clear it")
		}
		if err != nil {
			return err
		}
		if err := a.store.Save(ctx, a.key, c); err != nil {
			return err
		}
		printCart(out, c)

	case "remove":
		id, err := uuid.Parse(*product)
		if err != nil {
			return fmt.Errorf("-product: %w", err)
		}
		c, err := a.store.Load(ctx, a.key)
		if err != nil {
			return err
		}
		c = c.Remove(id)
		if err := a.store.Save(ctx, a.key, c); err != nil {
			return err
		}
		printCart(out, c)

	case "cart":
		c, err := a.store.Load(ctx, a.key)
		if err != nil {
			return err
		}
		printCart(out, c)

	case "checkout":
		at, err := time.Parse(time.RFC3339, *pickup)
		if err != nil {
			return fmt.Errorf("-pickup: %w", err)
		}
		c, err := a.store.Load(ctx, a.key)
		if err != nil {
			return err
		}
		if err := a.login(ctx); err != nil {
			return err
		}
		o, err := a.api.CreateOrder(ctx, c, at)
		if err != nil {
			return err
		}
		if err := a.store.Save(ctx, a.key, c.Clear()); err != nil {
			return err
		}
		fmt.Fprintf(out, "order %s\t%s\ttotal %s\n", o.ID, o.Status, o.TotalAmount.StringFixed(2))

	case "orders":
		var shopID uuid.UUID
		if *shop != "" {
			id, err := uuid.Parse(*shop)
			if err != nil {
				return fmt.Errorf("-shop: %w", err)
			}
			shopID = id
		}
		if err := a.login(ctx); err != nil {
			return err
		}
		orders, err := a.api.ListOrders(ctx, shopID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Shop.Name, o.Status, o.TotalAmount.StringFixed(2), o.PickupTime.Format(time.RFC3339))
		}

	case "status":
		id, err := uuid.Parse(*order)
		if err != nil {
			return fmt.Errorf("-order: %w", err)
		}
		if err := a.login(ctx); err != nil {
			return err
		}
		o, err := a.api.UpdateOrderStatus(ctx, id, *to)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "order %s\t%s\n", o.ID, o.Status)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printCart(out *tabwriter.Writer, c cart.Cart) {
	if c.IsEmpty() {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	for _, it := range c.Items() {
		fmt.Fprintf(out, "%s\t%s\tx%d\t%s\n", it.ProductID, it.Name, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(out, "shop %s\t\ttotal\t%s\n", c.ShopID(), c.Total().StringFixed(2))
}

func parseLatLng(v string) (float64, float64, error) {
	latS, lngS, ok := strings.Cut(v, ",")
	if !ok {
		return 0, 0, fmt.Errorf("-near wants LAT,LNG, got %q", v)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}
