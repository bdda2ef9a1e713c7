package service

import (
	"context"
	"strings"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/pkg/callcodec"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// CreatorState is the progress of one creator lookup.
type CreatorState int

const (
	CreatorUnresolved CreatorState = iota
	CreatorFactoryFound
	CreatorOwnerFound
	CreatorFailed
)

func (s CreatorState) String() string {
	switch s {
	case CreatorUnresolved:
		return "unresolved"
	case CreatorFactoryFound:
		return "factory_found"
	case CreatorOwnerFound:
		return "owner_found"
	case CreatorFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// creatorLookup walks pool -> factory() -> owner().
type creatorLookup struct {
	state   CreatorState
	factory common.Address
	owner   common.Address
}

func (l *creatorLookup) step(ctx context.Context, reader *ContractReader, contract string) {
	switch l.state {
	case CreatorUnresolved:
		factory, ok := reader.Address(ctx, contract, callcodec.Factory).Get()
		if !ok {
			l.state = CreatorFailed
			return
		}
		l.factory, l.state = factory, CreatorFactoryFound
	case CreatorFactoryFound:
		if owner, ok := reader.Address(ctx, l.factory.Hex(), callcodec.Owner).Get(); ok {
			l.owner, l.state = owner, CreatorOwnerFound
		}
	}
}

func (l *creatorLookup) creator() *string {
	var addr common.Address
	switch l.state {
	case CreatorOwnerFound:
		addr = l.owner
	case CreatorFactoryFound:
		addr = l.factory
	default:
		return nil
	}
	s := strings.ToLower(addr.Hex())
	return &s
}

// CreatorResolver finds a display-friendly origin address for yielding positions.
type CreatorResolver struct {
	reader         *ContractReader
	maxConcurrency int
	logger         port.Logger
}

// NewCreatorResolver creates a CreatorResolver.
func NewCreatorResolver(reader *ContractReader, maxConcurrency int, l port.Logger) *CreatorResolver {
	return &CreatorResolver{reader: reader, maxConcurrency: maxConcurrency, logger: l}
}

// Resolve returns the owner of contract's factory, the factory itself when its owner is
// unreadable, or nil when contract exposes no factory.
func (r *CreatorResolver) Resolve(ctx context.Context, contract string) (*string, CreatorState) {
	lookup := &creatorLookup{}
	// Two transitions at most: Unresolved -> FactoryFound|Failed -> OwnerFound|FactoryFound.
	lookup.step(ctx, r.reader, contract)
	if lookup.state == CreatorFactoryFound {
		lookup.step(ctx, r.reader, contract)
	}
	return lookup.creator(), lookup.state
}

// ResolveAll fills Creator on a copy of positions. Positions that already carry a creator or
// lack a hex contract address are left as they are.
func (r *CreatorResolver) ResolveAll(ctx context.Context, positions []entity.VaultPosition) []entity.VaultPosition {
	out := make([]entity.VaultPosition, len(positions))
	copy(out, positions)

	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for i := range out {
		if out[i].Creator != nil || !common.IsHexAddress(out[i].Address) {
			continue
		}
		g.Go(func() error {
			creator, state := r.Resolve(ctx, out[i].Address)
			out[i].Creator = creator
			r.logger.Debug("Creator lookup finished", "position", out[i].Address, "state", state.String())
			return nil
		})
	}
	_ = g.Wait()
	return out
}
