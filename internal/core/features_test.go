//go:build unit

package core

import (
	"book-store/internal/adapter"
	"book-store/internal/core/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

type storefrontTestContext struct {
	backend   *adapter.MemoryBackend
	svc       *Service
	books     map[string]model.Book
	lastAdded bool
	snapshot  []byte
	orderErr  error
}

func (c *storefrontTestContext) reset() {
	if c.svc != nil {
		c.svc.Close()
	}
	c.backend = adapter.NewMemoryBackend()
	c.svc = NewService(context.Background(), adapter.NewStore(c.backend, nil), &stubCatalog{}, Options{})
	c.books = make(map[string]model.Book)
	c.lastAdded = false
	c.snapshot = nil
	c.orderErr = nil
}

func (c *storefrontTestContext) bookNamed(title string, price float64) model.Book {
	if b, ok := c.books[title]; ok {
		return b
	}
	b := model.Book{Key: "/works/" + strings.ToLower(title), Title: title, Price: price, Rating: 4}
	c.books[title] = b
	return b
}

func (c *storefrontTestContext) anEmptyStorefront() error {
	return nil
}

func (c *storefrontTestContext) iAddToTheCart(title string, price float64) error {
	c.lastAdded = c.svc.AddToCart(context.Background(), c.bookNamed(title, price))
	return nil
}

func (c *storefrontTestContext) isInTheCart(title string, price float64) error {
	if !c.svc.AddToCart(context.Background(), c.bookNamed(title, price)) {
		return fmt.Errorf("%s was already in the cart", title)
	}
	raw, _, err := c.backend.Get(context.Background(), model.KeyCart)
	c.snapshot = raw
	return err
}

func (c *storefrontTestContext) isInTheWishlist(title string, price float64) error {
	if !c.svc.AddToWishlist(context.Background(), c.bookNamed(title, price)) {
		return fmt.Errorf("%s was already in the wishlist", title)
	}
	return nil
}

func (c *storefrontTestContext) iRemoveFromTheCart(title string) error {
	c.svc.RemoveFromCart(context.Background(), c.bookNamed(title, 0).Key)
	return nil
}

func (c *storefrontTestContext) iMoveFromTheWishlistToTheCart(title string) error {
	c.svc.MoveToCart(context.Background(), c.books[title])
	return nil
}

func (c *storefrontTestContext) iPlaceAnOrder() error {
	_, c.orderErr = c.svc.PlaceOrder(context.Background())
	return nil
}

func (c *storefrontTestContext) theCartHolds(n int) error {
	if got := len(c.svc.Cart()); got != n {
		return fmt.Errorf("cart holds %d books, want %d", got, n)
	}
	return nil
}

func (c *storefrontTestContext) theWishlistHolds(n int) error {
	if got := len(c.svc.Wishlist()); got != n {
		return fmt.Errorf("wishlist holds %d books, want %d", got, n)
	}
	return nil
}

func (c *storefrontTestContext) theLastAddWasRejected() error {
	if c.lastAdded {
		return errors.New("expected the add to be rejected")
	}
	return nil
}

func (c *storefrontTestContext) thePersistedCartHolds(n int) error {
	books := adapter.NewStore(c.backend, nil).LoadBooks(context.Background(), model.KeyCart)
	if len(books) != n {
		return fmt.Errorf("persisted cart holds %d books, want %d", len(books), n)
	}
	return nil
}

func (c *storefrontTestContext) thePersistedCartIsUnchanged() error {
	raw, _, err := c.backend.Get(context.Background(), model.KeyCart)
	if err != nil {
		return err
	}
	if !bytes.Equal(raw, c.snapshot) {
		return fmt.Errorf("persisted cart changed: %s -> %s", c.snapshot, raw)
	}
	return nil
}

func (c *storefrontTestContext) theNewestOrderTotals(total float64) error {
	orders := c.svc.Orders()
	if len(orders) == 0 {
		return errors.New("no orders")
	}
	if math.Abs(orders[0].Total-total) > 1e-9 {
		return fmt.Errorf("order total %.2f, want %.2f", orders[0].Total, total)
	}
	return nil
}

func (c *storefrontTestContext) thereAreOrders(n int) error {
	if got := len(c.svc.Orders()); got != n {
		return fmt.Errorf("%d orders, want %d", got, n)
	}
	return nil
}

func (c *storefrontTestContext) theOrderIsRejected() error {
	if !errors.Is(c.orderErr, model.ErrEmptyCart) {
		return fmt.Errorf("expected ErrEmptyCart, got %v", c.orderErr)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.svc.Close()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty storefront$`, tc.anEmptyStorefront)
	ctx.Step(`^"([^"]*)" priced (\d+\.\d+) is in the cart$`, tc.isInTheCart)
	ctx.Step(`^"([^"]*)" priced (\d+\.\d+) is in the wishlist$`, tc.isInTheWishlist)

	// When steps
	ctx.Step(`^I add "([^"]*)" priced (\d+\.\d+) to the cart$`, tc.iAddToTheCart)
	ctx.Step(`^I remove "([^"]*)" from the cart$`, tc.iRemoveFromTheCart)
	ctx.Step(`^I move "([^"]*)" from the wishlist to the cart$`, tc.iMoveFromTheWishlistToTheCart)
	ctx.Step(`^I place an order$`, tc.iPlaceAnOrder)

	// Then steps
	ctx.Step(`^the cart holds (\d+) books?$`, tc.theCartHolds)
	ctx.Step(`^the wishlist holds (\d+) books?$`, tc.theWishlistHolds)
	ctx.Step(`^the last add was rejected as already present$`, tc.theLastAddWasRejected)
	ctx.Step(`^the persisted cart holds (\d+) books?$`, tc.thePersistedCartHolds)
	ctx.Step(`^the persisted cart is unchanged$`, tc.thePersistedCartIsUnchanged)
	ctx.Step(`^the newest order totals (\d+\.\d+)$`, tc.theNewestOrderTotals)
	ctx.Step(`^there (?:is|are) (\d+) orders?$`, tc.thereAreOrders)
	ctx.Step(`^the order is rejected because the cart is empty$`, tc.theOrderIsRejected)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/storefront.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
