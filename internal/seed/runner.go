// Package seed orchestrates the full dataset build: reference entities first,
// then the order pass with its dependent rows, all streamed through the batch
// loader.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/spasumarthi/food-delivery-datagen/internal/gen"
	"github.com/spasumarthi/food-delivery-datagen/internal/load"
	"github.com/spasumarthi/food-delivery-datagen/pkg/config"
	"github.com/spasumarthi/food-delivery-datagen/pkg/db"
	"github.com/spasumarthi/food-delivery-datagen/pkg/logger"
)

// Fixed offsets from the base seed keep every generator on its own random
// stream, so resizing one entity never reshuffles the others.
const (
	seedCustomers = iota + 1
	seedAddresses
	seedBrands
	seedOutlets
	seedMenu
	seedCouriers
	seedFx
	seedOrders
)

// Runner wires generators, reference lookups and the loader into one pass.
type Runner struct {
	client *db.Client
	loader *load.Loader
	cfg    config.SeedConfig
	schema string
	logg   *logger.Logger
}

// NewRunner validates its dependencies and returns a ready runner.
func NewRunner(client *db.Client, loader *load.Loader, cfg config.SeedConfig, schema string, logg *logger.Logger) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if schema == "" {
		return nil, fmt.Errorf("schema is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Runner{client: client, loader: loader, cfg: cfg, schema: schema, logg: logg}, nil
}

// Run executes the whole seeding pipeline. It is safe to rerun: with Reset it
// rebuilds from empty tables, without it the order merge ignores id conflicts
// and sequences are realigned either way.
func (r *Runner) Run(ctx context.Context) error {
	now := time.Now().UTC()
	windowStart, windowEnd := r.cfg.OrdersWindow(now)

	if r.cfg.Reset {
		stepCtx := r.logg.WithStep(ctx, "reset")
		r.logg.Info(stepCtx, "truncating dataset tables")
		if err := r.loader.Reset(stepCtx); err != nil {
			return err
		}
	}

	if err := r.loadReference(ctx, now); err != nil {
		return err
	}

	return r.loadOrders(ctx, now, windowStart, windowEnd)
}

// loadReference builds every entity the order pass draws foreign keys from.
func (r *Runner) loadReference(ctx context.Context, now time.Time) error {
	base := r.cfg.Seed

	steps := []struct {
		name string
		rows func() (gen.RowSet, error)
	}{
		{"customers", func() (gen.RowSet, error) {
			return gen.Customers(base+seedCustomers, r.cfg.Customers, now), nil
		}},
		{"customer_addresses", func() (gen.RowSet, error) {
			custRange, err := idRange(ctx, r.client, r.schema, "customers", "customer_id")
			if err != nil {
				return gen.RowSet{}, err
			}
			return gen.Addresses(base+seedAddresses, custRange.Lo, custRange.Hi, now), nil
		}},
		{"restaurant_brands", func() (gen.RowSet, error) {
			return gen.Brands(base+seedBrands, r.cfg.Brands, now), nil
		}},
		{"restaurant_outlets", func() (gen.RowSet, error) {
			brandRange, err := idRange(ctx, r.client, r.schema, "restaurant_brands", "brand_id")
			if err != nil {
				return gen.RowSet{}, err
			}
			return gen.Outlets(base+seedOutlets, r.cfg.Outlets, brandRange.Lo, brandRange.Hi, now), nil
		}},
		{"menu_items", func() (gen.RowSet, error) {
			outletRange, err := idRange(ctx, r.client, r.schema, "restaurant_outlets", "restaurant_id")
			if err != nil {
				return gen.RowSet{}, err
			}
			return gen.MenuItems(base+seedMenu, outletRange.Lo, outletRange.Hi, r.cfg.MenuItemsPerOutlet, now), nil
		}},
		{"couriers", func() (gen.RowSet, error) {
			return gen.Couriers(base+seedCouriers, r.cfg.Couriers, now), nil
		}},
	}

	for _, s := range steps {
		stepCtx := r.logg.WithStep(ctx, s.name)
		started := time.Now()

		rs, err := s.rows()
		if err != nil {
			return err
		}
		if err := r.loader.Load(stepCtx, rs); err != nil {
			return err
		}

		r.logg.Info(r.logg.WithField(stepCtx, "took", time.Since(started).String()), "step done")
	}

	return r.loadFxRates(ctx, now)
}

// loadFxRates ensures the currency rows exist and loads the daily rate series
// for both directions.
func (r *Runner) loadFxRates(ctx context.Context, now time.Time) error {
	stepCtx := r.logg.WithStep(ctx, "fx_rates")
	started := time.Now()

	audID, inrID, err := ensureCurrencies(stepCtx, r.client, r.schema)
	if err != nil {
		return err
	}

	rs := gen.FxRates(r.cfg.Seed+seedFx, r.cfg.FXDays, audID, inrID, now)
	if err := r.loader.Load(stepCtx, rs); err != nil {
		return err
	}

	r.logg.Info(r.logg.WithField(stepCtx, "took", time.Since(started).String()), "step done")
	return nil
}

// loadOrders reads back the reference id ranges, then builds and batches the
// configured number of orders with ids continuing past the current maximum.
func (r *Runner) loadOrders(ctx context.Context, now, windowStart, windowEnd time.Time) error {
	stepCtx := r.logg.WithStep(ctx, "orders")
	started := time.Now()

	in := gen.OrderInputs{
		Now:         now,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	var err error
	if in.Customers, err = idRange(stepCtx, r.client, r.schema, "customers", "customer_id"); err != nil {
		return err
	}
	if in.Outlets, err = idRange(stepCtx, r.client, r.schema, "restaurant_outlets", "restaurant_id"); err != nil {
		return err
	}
	if in.MenuItems, err = idRange(stepCtx, r.client, r.schema, "menu_items", "menu_item_id"); err != nil {
		return err
	}
	if in.Couriers, err = idRange(stepCtx, r.client, r.schema, "couriers", "courier_id"); err != nil {
		return err
	}
	if in.Addresses, err = addressLookup(stepCtx, r.client, r.schema); err != nil {
		return err
	}
	if in.AudID, in.InrID, err = ensureCurrencies(stepCtx, r.client, r.schema); err != nil {
		return err
	}

	builder, err := gen.NewOrderBuilder(r.cfg.Seed+seedOrders, in)
	if err != nil {
		return fmt.Errorf("building order generator: %w", err)
	}

	startID, err := maxOrderID(stepCtx, r.client, r.schema)
	if err != nil {
		return err
	}

	for i := 0; i < r.cfg.Orders; i++ {
		orderID := startID + int64(i) + 1
		if err := r.loader.AddOrder(stepCtx, builder.Build(orderID)); err != nil {
			return err
		}
	}
	if err := r.loader.FlushOrders(stepCtx); err != nil {
		return err
	}

	r.logg.Info(r.logg.WithFields(stepCtx, map[string]any{
		"orders": r.cfg.Orders,
		"took":   time.Since(started).String(),
	}), "step done")
	return nil
}
