// The agent is the seller/bidder side of the auction protocol. It signs
// with a local key, talks to the marketplace API, and anchors listings and
// bids on-chain through the contract.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/coordinator"
	"github.com/lumina/lts/internal/ipfs"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "create-auction":
		err = createAuction(ctx, cfg, os.Args[2:])
	case "bid":
		err = placeBid(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: agent <create-auction|bid> [flags]")
}

func build(ctx context.Context, cfg *config.Config) (*coordinator.Coordinator, error) {
	if cfg.Chain.PrivateKey == "" {
		return nil, errors.New("chain.private_key must be configured")
	}
	signer, err := wallet.NewSignerFromHex(cfg.Chain.PrivateKey)
	if err != nil {
		return nil, err
	}

	chainClient := chain.NewClient(cfg.Chain)
	if err := chainClient.InitWithSigner(ctx); err != nil {
		return nil, err
	}

	api := coordinator.NewAPIClient(cfg.Marketplace.BaseURL)
	pinner := ipfs.NewClient(cfg.IPFS)
	return coordinator.New(api, chainClient, pinner, chainClient, signer, cfg.Auction.MinDuration), nil
}

func createAuction(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create-auction", flag.ExitOnError)
	ticketID := fs.Int64("ticket", 0, "ticket id to list")
	eventID := fs.Int64("event", 0, "event the ticket belongs to")
	price := fs.String("price", "", "starting price in ETH")
	hours := fs.Int("hours", 24, "auction duration in hours")
	fs.Parse(args)

	startingPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}

	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := c.CreateAuction(ctx, coordinator.CreateAuctionParams{
		TicketID:      *ticketID,
		EventID:       *eventID,
		StartingPrice: startingPrice,
		StartTime:     now.Add(time.Minute),
		EndTime:       now.Add(time.Duration(*hours) * time.Hour),
	})
	if errors.Is(err, coordinator.ErrRegistrationFailed) {
		// The listing exists on-chain; losing the id would orphan it.
		logger.Error("Registration failed; keep these for support: auction %d, hash %s",
			result.AuctionID, result.MetadataHash)
		return err
	}
	if err != nil {
		return err
	}

	logger.Info("Auction %d registered (metadata %s)", result.AuctionID, result.MetadataHash)
	return nil
}

func placeBid(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bid", flag.ExitOnError)
	auctionID := fs.Int64("auction", 0, "auction id")
	amount := fs.String("amount", "", "bid amount in ETH")
	fs.Parse(args)

	bidAmount, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}

	auction, err := c.PlaceBid(ctx, *auctionID, bidAmount)
	var stale *coordinator.StaleBidError
	if errors.As(err, &stale) {
		return fmt.Errorf("bid rejected, current price is %s ETH", stale.CurrentPrice)
	}
	if err != nil {
		return err
	}

	logger.Info("Bid accepted: auction %d now at %s ETH with %d bids",
		auction.ID, auction.CurrentPrice, auction.BidCount)
	return nil
}
