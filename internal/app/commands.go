package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/clipmarket/client/internal/models"
	"github.com/clipmarket/client/internal/playback"
	"github.com/clipmarket/client/internal/session"
	"github.com/clipmarket/client/internal/wallet"
)

var (
	errNotSignedIn       = errors.New("not signed in (run: clipmarket login)")
	errEntitlementDenied = errors.New("video requires purchase")
)

// resolveIdentity performs the one-shot session resolve and requires an
// authenticated identity.
func (c *client) resolveIdentity(ctx context.Context) (*models.Identity, error) {
	if err := c.session.Resolve(ctx); err != nil && !errors.Is(err, session.ErrAlreadyResolved) {
		return nil, err
	}
	identity := c.session.CurrentIdentity()
	if identity == nil {
		return nil, errNotSignedIn
	}
	return identity, nil
}

func (c *client) login(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	fmt.Print("password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return err
	}

	if err := c.session.Login(ctx, strings.TrimSpace(email), strings.TrimSpace(password)); err != nil {
		return err
	}

	identity := c.session.CurrentIdentity()
	fmt.Printf("signed in as %s (balance %d)\n", identity.Username, identity.WalletBalance)
	return nil
}

func (c *client) logout() error {
	c.session.Revoke()
	fmt.Println("signed out")
	return nil
}

func (c *client) me(ctx context.Context) error {
	identity, err := c.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("user:      %s (%s)\n", identity.Username, identity.Email)
	fmt.Printf("balance:   %d\n", identity.WalletBalance)
	fmt.Printf("purchases: %d videos\n", len(identity.PurchasedVideoIDs))
	return nil
}

// feed loads the discovery list and walks the reveal window the way the
// browser does: each iteration stands in for the sentinel element
// scrolling into view.
func (c *client) feed(ctx context.Context) error {
	identity, err := c.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	if err := c.pager.Load(ctx); err != nil {
		fmt.Println("feed unavailable, retrying once...")
		if err := c.pager.Retry(ctx); err != nil {
			return err
		}
	}

	shown := 0
	for {
		window := c.pager.VisibleSlice()
		for _, video := range window[shown:] {
			printFeedLine(video, *identity)
		}
		shown = len(window)

		if c.pager.Exhausted() {
			break
		}
		// Sentinel becomes visible: reveal the next page.
		c.pager.Advance()
	}

	fmt.Printf("%d videos\n", shown)
	return nil
}

func printFeedLine(video models.VideoSummary, identity models.Identity) {
	tag := "short"
	if video.Kind == models.KindLong {
		tag = "long "
	}

	access := ""
	if !models.CanWatch(video, identity) {
		access = fmt.Sprintf("  [locked, price %d]", video.Price)
	} else if video.Price > 0 {
		access = "  [purchased]"
	}

	fmt.Printf("%-6s %s  %q by @%s%s\n", video.ID, tag, video.Title, video.CreatorUsername, access)
}

// watch resolves a video and, for shorts, runs its card through the
// visibility lifecycle: scrolled into view, tapped, scrolled away.
func (c *client) watch(ctx context.Context, videoID string) error {
	identity, err := c.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	video, err := c.details.Lookup(ctx, videoID)
	if err != nil {
		return err
	}

	if !models.CanWatch(video, *identity) {
		fmt.Printf("%q costs %d (run: clipmarket purchase %s)\n", video.Title, video.Price, video.ID)
		return errEntitlementDenied
	}

	if video.Kind == models.KindLong {
		fmt.Printf("open %s\n", video.MediaRef)
		return nil
	}

	media := &terminalMedia{title: video.Title}
	player := playback.NewPlayer(media, c.cfg.VisibilityThreshold, c.logger)
	defer player.Close()

	fmt.Printf("short %q by @%s\n", video.Title, video.CreatorUsername)

	player.Observe(1.0) // card fills the viewport
	player.Toggle()     // tap: pause
	player.Toggle()     // tap: resume
	player.Observe(0.2) // scrolled away; exit always pauses

	return nil
}

func (c *client) purchase(ctx context.Context, videoID string) error {
	identity, err := c.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	video, err := c.details.Lookup(ctx, videoID)
	if err != nil {
		return err
	}
	if models.CanWatch(video, *identity) {
		fmt.Printf("%q is already available\n", video.Title)
		return nil
	}

	newBalance, err := c.ledger.Purchase(ctx, video.ID)
	if err != nil {
		var rejection *wallet.RejectionError
		if errors.As(err, &rejection) {
			fmt.Println(rejection.Reason)
		}
		return err
	}

	// The entitlement is recorded locally until the next identity
	// refresh reconciles it with the server's durable purchase set.
	c.session.ApplyPurchase(video.ID)

	fmt.Printf("purchased %q, balance %d\n", video.Title, newBalance)
	return nil
}

func (c *client) gift(ctx context.Context, creatorID, videoID, amountArg string) error {
	amount, err := strconv.Atoi(amountArg)
	if err != nil {
		return fmt.Errorf("invalid amount %q", amountArg)
	}

	if _, err := c.resolveIdentity(ctx); err != nil {
		return err
	}

	newBalance, err := c.ledger.SendGift(ctx, creatorID, videoID, amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			fmt.Printf("insufficient balance (%d) for a %d gift\n", c.ledger.Balance(), amount)
		case errors.Is(err, wallet.ErrInvalidAmount):
			fmt.Println("gift amount must be positive")
		default:
			var rejection *wallet.RejectionError
			if errors.As(err, &rejection) {
				fmt.Println(rejection.Reason)
			}
		}
		return err
	}

	fmt.Printf("gift sent, balance %d\n", newBalance)
	return nil
}

// balance reconciles the cached balance out of band via the dedicated
// balance endpoint. Purchase and gift flows never call this; their own
// responses are authoritative.
func (c *client) balance(ctx context.Context) error {
	if _, err := c.resolveIdentity(ctx); err != nil {
		return err
	}

	balance, err := c.ledger.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("balance %d\n", balance)
	return nil
}

// terminalMedia narrates media commands instead of rendering frames.
type terminalMedia struct {
	title string
}

func (m *terminalMedia) Play() error {
	fmt.Printf("playing %q\n", m.title)
	return nil
}

func (m *terminalMedia) Pause() {
	fmt.Printf("paused %q\n", m.title)
}
