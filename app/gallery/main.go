package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/nftgallery/app/internal/wiring"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/env"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/gallery"
	gallery_usecase "github.com/x-xyz/nftgallery/stores/gallery/usecase"
)

type summary struct {
	Owner         string   `json:"owner"`
	Page          int      `json:"page"`
	TotalPages    int      `json:"totalPages"`
	From          int      `json:"from"`
	To            int      `json:"to"`
	FilteredCount int      `json:"filteredCount"`
	TotalCount    int      `json:"totalCount"`
	Collections   []string `json:"collections"`
	Empty         bool     `json:"empty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("gallery", pflag.ContinueOnError)
	owner := flags.String("owner", "", "wallet address or ens name")
	search := flags.String("search", "", "filter by name, collection or token id")
	sortKey := flags.String("sort", "", "default | name | tokenId | collection")
	collection := flags.String("collection", gallery.CollectionAll, "collection name")
	pageSize := flags.Int("page-size", 0, "items per page")
	page := flags.Int("page", 1, "page to print")
	singlePage := flags.Bool("single-page", false, "print one upstream page instead of the gallery view")
	pageKey := flags.String("page-key", "", "upstream cursor used with --single-page")
	configFile := flags.String("config", env.ConfigFile(), "config file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}

	if err := wiring.LoadConfig(*configFile); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "config": *configFile}).Warn("config not loaded, use env and defaults")
	}
	defer log.Sync()

	c := ctx.Background()
	enc := json.NewEncoder(os.Stdout)

	if *owner == "" {
		fmt.Fprintln(os.Stderr, domain.ErrEmptyOwner)
		flags.PrintDefaults()
		return 2
	}

	fetcher := wiring.Fetcher(wiring.Alchemy(), nil)

	if *singlePage {
		if err := enc.Encode(fetcher.FetchPage(c, *owner, *pageKey)); err != nil {
			c.WithField("err", err).Error("failed to Encode")
			return 1
		}
		return 0
	}

	cfg := &gallery_usecase.ManagerCfg{
		Fetcher:  fetcher,
		PageSize: viper.GetInt("gallery.pageSize"),
		Workers:  1,
	}
	if ensService := wiring.Ens(c, nil); ensService != nil {
		cfg.Resolver = ensService
	}
	galleries := gallery_usecase.NewManager(cfg)
	defer galleries.Close()

	s := galleries.Create(c)
	if err := s.Search(c, *owner); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	change := gallery.SelectionChange{}
	if flags.Changed("search") {
		change.SearchTerm = search
	}
	if flags.Changed("sort") {
		key, err := gallery.ToSortKey(*sortKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid sort %q\n", *sortKey)
			return 2
		}
		change.SortKey = &key
	}
	if flags.Changed("collection") {
		change.CollectionFilter = collection
	}
	if flags.Changed("page-size") {
		change.PageSize = pageSize
	}
	if flags.Changed("page") {
		change.PageIndex = page
	}

	view, err := s.View(c, change)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	for _, item := range view.Items {
		if err := enc.Encode(item); err != nil {
			c.WithField("err", err).Error("failed to Encode")
			return 1
		}
	}
	status := s.Status()
	c.WithFields(log.Fields{"owner": status.Owner.Short(), "items": len(view.Items)}).Info("gallery loaded")
	if err := enc.Encode(summary{
		Owner:         string(status.Owner),
		Page:          view.Selection.PageIndex,
		TotalPages:    view.TotalPages,
		From:          view.From,
		To:            view.To,
		FilteredCount: view.FilteredCount,
		TotalCount:    view.TotalCount,
		Collections:   view.Collections,
		Empty:         status.Empty,
	}); err != nil {
		c.WithField("err", err).Error("failed to Encode")
		return 1
	}
	return 0
}
