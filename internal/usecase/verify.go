package usecase

import (
	"context"
	"errors"
	"log/slog"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	anchor "github.com/dropanchor/anchor-go"
	"github.com/dropanchor/anchor-go/internal/domain"
	"github.com/dropanchor/anchor-go/schemas"
)

const verifyConcurrency = 4

// VerifyUsecase re-derives content hashes for referenced address records and
// compares them against the refs captured at check-in time.
type VerifyUsecase struct {
	records RecordService
	journal Journal
	logger  *slog.Logger
}

type VerifyOption func(*VerifyUsecase)

func WithVerifyJournal(j Journal) VerifyOption {
	return func(uc *VerifyUsecase) { uc.journal = j }
}

func WithVerifyLogger(l *slog.Logger) VerifyOption {
	return func(uc *VerifyUsecase) { uc.logger = l }
}

func NewVerifyUsecase(records RecordService, opts ...VerifyOption) *VerifyUsecase {
	uc := &VerifyUsecase{
		records: records,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Verify re-fetches the record behind ref and compares content hashes.
// A mismatch is a normal boolean outcome, not an error; only transport
// trouble and a missing record are errors.
func (uc *VerifyUsecase) Verify(ctx context.Context, ref anchor.StrongRef) (bool, error) {
	ctx, span := tracer.Start(ctx, "Verify.Usecase.Verify")
	defer span.End()

	repo, collection, rkey, err := anchor.ParseATURI(ref.URI)
	if err != nil {
		return false, domain.InvalidFormatError{Detail: err.Error()}
	}

	env, err := uc.records.GetRecord(ctx, repo, collection, rkey, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.MissingLocationDataError{URI: ref.URI}
		}
		span.RecordError(pkgerrors.Wrap(err, "verification fetch failed"))
		return false, err
	}

	return env.CID == ref.CID, nil
}

// Resolve builds the read-side composite for a check-in: the record itself,
// the address it references, and whether that address still matches the
// captured hash. Recomputed per call, never persisted.
func (uc *VerifyUsecase) Resolve(ctx context.Context, checkinRef anchor.StrongRef) (*domain.ResolvedCheckin, error) {
	ctx, span := tracer.Start(ctx, "Verify.Usecase.Resolve")
	defer span.End()

	repo, collection, rkey, err := anchor.ParseATURI(checkinRef.URI)
	if err != nil {
		return nil, domain.InvalidFormatError{Detail: err.Error()}
	}

	env, err := uc.records.GetRecord(ctx, repo, collection, rkey, false)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, "check-in fetch failed"))
		return nil, err
	}

	decoded, err := schemas.Decode(env.Value)
	if err != nil {
		return nil, domain.InvalidFormatError{Detail: err.Error()}
	}
	checkin, ok := decoded.(schemas.Checkin)
	if !ok {
		return nil, domain.InvalidFormatError{Detail: "record is not a check-in"}
	}

	if checkin.AddressRef.IsZero() {
		return nil, domain.MissingLocationDataError{URI: checkinRef.URI}
	}

	addrRepo, addrCollection, addrRkey, err := anchor.ParseATURI(checkin.AddressRef.URI)
	if err != nil {
		return nil, domain.InvalidFormatError{Detail: err.Error()}
	}

	addrEnv, err := uc.records.GetRecord(ctx, addrRepo, addrCollection, addrRkey, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.MissingLocationDataError{URI: checkin.AddressRef.URI}
		}
		span.RecordError(pkgerrors.Wrap(err, "address fetch failed"))
		return nil, err
	}

	addrDecoded, err := schemas.Decode(addrEnv.Value)
	if err != nil {
		return nil, domain.InvalidFormatError{Detail: err.Error()}
	}
	address, _ := addrDecoded.(schemas.Address)

	return &domain.ResolvedCheckin{
		Ref:        env.Ref(),
		Checkin:    checkin,
		Address:    address,
		IsVerified: addrEnv.CID == checkin.AddressRef.CID,
	}, nil
}

// VerifyOutcome is one journal entry's verification result.
type VerifyOutcome struct {
	Entry    domain.CheckinEntry
	Verified bool
	Err      error
}

// VerifyAll runs an integrity pass over the local journal with bounded
// concurrency. Cancellation is cooperative: it is checked between entries,
// and in-flight fetches observe the context themselves. Already-launched
// units are always drained before returning, so the returned slice is never
// written to after the call ends.
func (uc *VerifyUsecase) VerifyAll(ctx context.Context) ([]VerifyOutcome, error) {
	if uc.journal == nil {
		return nil, nil
	}

	entries, err := uc.journal.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	outcomes := make([]VerifyOutcome, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)

	launched := 0
	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		launched++

		i, entry := i, entry
		g.Go(func() error {
			ok, verr := uc.Verify(gctx, entry.Address)
			outcomes[i] = VerifyOutcome{Entry: entry, Verified: ok, Err: verr}

			if verr == nil {
				if merr := uc.journal.MarkVerified(gctx, entry.ID, ok); merr != nil {
					uc.logger.Warn("failed to record verification result", "id", entry.ID, "error", merr)
				}
			}
			return nil
		})
	}

	if werr := g.Wait(); werr != nil {
		return outcomes[:launched], werr
	}
	if cerr := ctx.Err(); cerr != nil {
		return outcomes[:launched], cerr
	}
	return outcomes, nil
}
