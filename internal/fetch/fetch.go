// Package fetch performs the startup data load. Users load first, since
// history derivation and request snapshots need the user index, then the
// remaining collections load concurrently. A failed collection degrades to an empty
// slice so the portal still starts with partial data.
package fetch

import (
	"context"
	"log"
	"sync"

	"github.com/assetdesk/assetdesk/internal/types"
)

// Source provides the five collection reads. Implementations: the mock
// source below for demo mode, or any backing API.
type Source interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	ListFamilies(ctx context.Context) ([]types.AssetFamily, error)
	ListAssets(ctx context.Context) ([]types.Asset, error)
	ListRequests(ctx context.Context) ([]types.Request, error)
	ListVendors(ctx context.Context) ([]types.Vendor, error)
}

// Result is the loaded dataset. Collections that failed to load are empty,
// never nil-panic territory.
type Result struct {
	Users    []types.User
	Families []types.AssetFamily
	Assets   []types.Asset
	Requests []types.Request
	Vendors  []types.Vendor
}

// Load runs the startup sequence against a source. Users are a hard
// dependency: if they fail the whole load fails. Everything after the user
// barrier degrades per collection.
func Load(ctx context.Context, src Source) (Result, error) {
	users, err := src.ListUsers(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Users = users

	var wg sync.WaitGroup
	step := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Printf("fetch: %s load failed, continuing with empty collection: %v", name, err)
			}
		}()
	}

	step("families", func() error {
		fams, err := src.ListFamilies(ctx)
		if err != nil {
			return err
		}
		res.Families = fams
		return nil
	})
	step("assets", func() error {
		assets, err := src.ListAssets(ctx)
		if err != nil {
			return err
		}
		res.Assets = assets
		return nil
	})
	step("requests", func() error {
		reqs, err := src.ListRequests(ctx)
		if err != nil {
			return err
		}
		res.Requests = reqs
		return nil
	})
	step("vendors", func() error {
		vendors, err := src.ListVendors(ctx)
		if err != nil {
			return err
		}
		res.Vendors = vendors
		return nil
	})
	wg.Wait()

	if res.Families == nil {
		res.Families = []types.AssetFamily{}
	}
	if res.Assets == nil {
		res.Assets = []types.Asset{}
	}
	if res.Requests == nil {
		res.Requests = []types.Request{}
	}
	if res.Vendors == nil {
		res.Vendors = []types.Vendor{}
	}
	return res, nil
}
