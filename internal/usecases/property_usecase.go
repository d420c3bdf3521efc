package usecases

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/registry"
	"property-registry.backend/pkg/logger"
	"property-registry.backend/pkg/utils"
)

// PropertyUsecase serves the marketplace, listing and dashboard views and the
// owner-side writes (register, buy).
type PropertyUsecase struct {
	records  RecordSource
	registry Registry
	session  AccountSession
	chain    ChainReader
	runner   *TxRunner
}

func NewPropertyUsecase(records RecordSource, reg Registry, session AccountSession, chain ChainReader, runner *TxRunner) *PropertyUsecase {
	return &PropertyUsecase{
		records:  records,
		registry: reg,
		session:  session,
		chain:    chain,
		runner:   runner,
	}
}

// Marketplace lists approved, unsold properties matching query
func (u *PropertyUsecase) Marketplace(ctx context.Context, query string, pagination utils.PageRequest) (*entities.PropertyPage, error) {
	return u.List(ctx, BucketValidated, query, pagination)
}

// List filters the freshly enumerated record set by bucket and query
func (u *PropertyUsecase) List(ctx context.Context, bucket Bucket, query string, pagination utils.PageRequest) (*entities.PropertyPage, error) {
	return listPage(ctx, u.records, u.session, bucket, query, pagination)
}

// Get reads one property for the current viewer
func (u *PropertyUsecase) Get(ctx context.Context, id uint64) (*entities.PropertyView, error) {
	p, err := u.registry.Property(ctx, id)
	if err != nil {
		return nil, err
	}
	viewer, _ := u.session.Current()
	view := entities.NewPropertyView(p, viewer)
	return &view, nil
}

// Dashboard returns the connected account's balance and properties
func (u *PropertyUsecase) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	account, err := currentAccount(u.session)
	if err != nil {
		return nil, err
	}

	balance, err := u.chain.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	all, err := u.records.All(ctx)
	if err != nil {
		return nil, err
	}

	mine := FilterProperties(all.Records, BucketMine, "", account)
	out := &entities.Dashboard{
		Account:    account,
		BalanceWei: balance,
		Balance:    entities.FormatEther(balance),
		Properties: toViews(mine, account),
		OwnedCount: len(mine),
	}
	for _, p := range mine {
		if p.ForSale() {
			out.ForSaleCount++
		}
	}
	return out, nil
}

// Register validates the listing form and submits it from the current account
func (u *PropertyUsecase) Register(ctx context.Context, input *entities.RegisterPropertyInput) (*entities.TxResult, error) {
	title, description, location, priceWei, err := validateRegisterInput(input)
	if err != nil {
		return nil, err
	}
	account, err := currentAccount(u.session)
	if err != nil {
		return nil, err
	}

	req := TxRequest{
		Action:  entities.TxActionRegister,
		Target:  account.Hex(),
		Account: account,
		Args:    []string{title, location, priceWei.String()},
	}
	result, err := u.runner.Run(ctx, req, func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
		return u.registry.Register(ctx, title, description, location, priceWei, onSubmit)
	})
	if err != nil {
		return nil, err
	}
	result.Property = u.newestOwned(ctx, account, title)
	return result, nil
}

// Buy pays the asking price for a listing. Sale eligibility is enforced by
// the contract; only buying one's own listing is refused up front.
func (u *PropertyUsecase) Buy(ctx context.Context, id uint64) (*entities.TxResult, error) {
	account, err := currentAccount(u.session)
	if err != nil {
		return nil, err
	}
	p, err := u.registry.Property(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnedBy(account) {
		return nil, domainerrors.Invalid("id", "you cannot buy your own property")
	}

	req := TxRequest{
		Action:  entities.TxActionBuy,
		Target:  strconv.FormatUint(id, 10),
		Account: account,
		Args:    []string{p.Price.String()},
	}
	result, err := u.runner.Run(ctx, req, func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
		return u.registry.Buy(ctx, id, p.Price, onSubmit)
	})
	if err != nil {
		return nil, err
	}
	result.Property = refreshProperty(ctx, u.registry, id)
	return result, nil
}

// BuyLink builds the EIP-681 request paying a listing's price to buyProperty
func (u *PropertyUsecase) BuyLink(ctx context.Context, id uint64) (*entities.BuyLink, error) {
	p, err := u.registry.Property(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.ForSale() {
		return nil, domainerrors.Invalid("id", fmt.Sprintf("property %d is %s and not for sale", id, p.Status))
	}
	chainID, err := u.chain.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	price := p.Price
	if price == nil {
		price = new(big.Int)
	}
	uri := fmt.Sprintf("ethereum:%s@%s/buyProperty?uint256=%d&value=%s",
		u.chain.ContractAddress().Hex(), chainID, id, price)
	return &entities.BuyLink{Property: p, URI: uri}, nil
}

// newestOwned returns the highest-id record if it is the listing account just
// registered. A failed re-read is logged; the write itself already succeeded.
func (u *PropertyUsecase) newestOwned(ctx context.Context, account common.Address, title string) *entities.PropertyRecord {
	ids, err := u.registry.PropertyIDs(ctx)
	if err != nil || len(ids) == 0 {
		if err != nil {
			logger.Warn(ctx, "Failed to re-read property ids after register", zap.Error(err))
		}
		return nil
	}
	p := refreshProperty(ctx, u.registry, ids[len(ids)-1])
	if p == nil || !p.OwnedBy(account) || p.Title != title {
		return nil
	}
	return p
}

func validateRegisterInput(input *entities.RegisterPropertyInput) (title, description, location string, priceWei *big.Int, err error) {
	if input == nil {
		return "", "", "", nil, domainerrors.Invalid("", "missing property details")
	}
	title = strings.TrimSpace(input.Title)
	description = strings.TrimSpace(input.Description)
	location = strings.TrimSpace(input.Location)
	switch {
	case title == "":
		return "", "", "", nil, domainerrors.Invalid("title", "is required")
	case description == "":
		return "", "", "", nil, domainerrors.Invalid("description", "is required")
	case location == "":
		return "", "", "", nil, domainerrors.Invalid("location", "is required")
	}
	priceWei, ok := entities.ParseEther(input.Price)
	if !ok {
		return "", "", "", nil, domainerrors.Invalid("price", "must be a decimal ether amount")
	}
	if priceWei.Sign() <= 0 {
		return "", "", "", nil, domainerrors.Invalid("price", "must be greater than zero")
	}
	return title, description, location, priceWei, nil
}

func listPage(ctx context.Context, records RecordSource, session AccountSession, bucket Bucket, query string, pagination utils.PageRequest) (*entities.PropertyPage, error) {
	viewer, _ := session.Current()
	all, err := records.All(ctx)
	if err != nil {
		return nil, err
	}
	matched := FilterProperties(all.Records, bucket, query, viewer)
	return &entities.PropertyPage{
		Items:   toViews(utils.Window(matched, pagination), viewer),
		Meta:    utils.NewPageMeta(int64(len(matched)), pagination),
		Omitted: all.Omitted,
	}, nil
}

func toViews(records []*entities.PropertyRecord, viewer common.Address) []entities.PropertyView {
	out := make([]entities.PropertyView, 0, len(records))
	for _, p := range records {
		out = append(out, entities.NewPropertyView(p, viewer))
	}
	return out
}

// refreshProperty re-reads a record after a write; nil when the read fails
func refreshProperty(ctx context.Context, reader RegistryReader, id uint64) *entities.PropertyRecord {
	p, err := reader.Property(ctx, id)
	if err != nil {
		logger.Warn(ctx, "Failed to re-read property after write",
			zap.Uint64("property_id", id),
			zap.Error(err),
		)
		return nil
	}
	return p
}

func currentAccount(session AccountSession) (common.Address, error) {
	account, ok := session.Current()
	if !ok {
		return common.Address{}, domainerrors.ErrNoAccount
	}
	return account, nil
}
