package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	anchor "github.com/dropanchor/anchor-go"
	"github.com/dropanchor/anchor-go/internal/domain"
	"github.com/dropanchor/anchor-go/internal/richtext"
	"github.com/dropanchor/anchor-go/schemas"
)

var tracer = otel.Tracer("usecase")

// CheckinResult reports both outcomes of a check-in: the mandatory record
// write and, separately, the optional social post. A failed post never
// undoes the check-in.
type CheckinResult struct {
	Checkin anchor.StrongRef
	Post    *anchor.StrongRef
	PostErr error
}

// CheckinUsecase is the strong-ref atomic writer: it publishes an address
// record and a check-in record referencing it, rolling the address back if
// the second write fails.
type CheckinUsecase struct {
	records  RecordService
	session  CredentialSource
	composer *richtext.Composer
	journal  Journal
	withPost bool
	logger   *slog.Logger
}

type CheckinOption func(*CheckinUsecase)

// WithJournal records successful check-ins in the local journal.
func WithJournal(j Journal) CheckinOption {
	return func(uc *CheckinUsecase) { uc.journal = j }
}

// WithSocialPost enables the best-effort announcement post.
func WithSocialPost(enabled bool) CheckinOption {
	return func(uc *CheckinUsecase) { uc.withPost = enabled }
}

func WithCheckinLogger(l *slog.Logger) CheckinOption {
	return func(uc *CheckinUsecase) { uc.logger = l }
}

func NewCheckinUsecase(records RecordService, session CredentialSource, composer *richtext.Composer, opts ...CheckinOption) *CheckinUsecase {
	uc := &CheckinUsecase{
		records:  records,
		session:  session,
		composer: composer,
		withPost: true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateCheckin publishes the two linked records. The writes are strictly
// sequential: the check-in embeds the strong ref the address write returns.
// Retries are the caller's responsibility and are not idempotent; each
// attempt creates a fresh address.
func (uc *CheckinUsecase) CreateCheckin(ctx context.Context, place domain.Place, message string) (*CheckinResult, error) {
	ctx, span := tracer.Start(ctx, "Checkin.Usecase.CreateCheckin")
	defer span.End()

	cred, err := uc.session.GetValidCredentials(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "no valid credential"))
		return nil, err
	}

	address := schemas.Address{
		Name:       place.Name,
		Street:     place.Street,
		Locality:   place.Locality,
		Region:     place.Region,
		Country:    place.Country,
		PostalCode: place.PostalCode,
	}

	addrRef, err := uc.records.CreateRecord(ctx, cred.AccessToken, cred.DID, schemas.CollectionAddress, address)
	if err != nil {
		span.RecordError(errors.Wrap(err, "address record write failed"))
		return nil, err
	}

	now := time.Now().UTC()
	checkin := schemas.Checkin{
		Text:       message,
		CreatedAt:  now,
		AddressRef: addrRef,
		Coordinates: schemas.Geo{
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Category:      place.Category,
		CategoryGroup: place.CategoryGroup,
		CategoryIcon:  place.CategoryIcon,
	}

	checkinRef, err := uc.records.CreateRecord(ctx, cred.AccessToken, cred.DID, schemas.CollectionCheckin, checkin)
	if err != nil {
		uc.rollbackAddress(ctx, cred, addrRef)
		span.RecordError(errors.Wrap(err, "check-in record write failed"))
		return nil, err
	}

	result := &CheckinResult{Checkin: checkinRef}

	if uc.withPost {
		text, facets := uc.composer.Compose(place.Name, place.CategoryIcon, place.URL, message)
		post := schemas.Post{Text: text, Facets: facets, CreatedAt: now}

		postRef, perr := uc.records.CreateRecord(ctx, cred.AccessToken, cred.DID, schemas.CollectionPost, post)
		if perr != nil {
			uc.logger.Warn("social post failed, check-in stands", "error", perr)
			result.PostErr = perr
		} else {
			result.Post = &postRef
		}
	}

	if uc.journal != nil {
		entry := domain.CheckinEntry{
			Checkin:   checkinRef,
			Address:   addrRef,
			Text:      checkin.Text,
			CreatedAt: now,
		}
		if _, jerr := uc.journal.Append(ctx, entry); jerr != nil {
			uc.logger.Warn("failed to journal check-in", "uri", checkinRef.URI, "error", jerr)
		}
	}

	return result, nil
}

// rollbackAddress issues the compensating delete for an address whose
// check-in never materialized. Best effort: a failure leaves an orphaned
// address, which is logged and accepted.
func (uc *CheckinUsecase) rollbackAddress(ctx context.Context, cred *domain.Credential, ref anchor.StrongRef) {
	_, _, rkey, err := anchor.ParseATURI(ref.URI)
	if err != nil {
		uc.logger.Warn("cannot parse address uri for rollback", "uri", ref.URI, "error", err)
		return
	}

	if derr := uc.records.DeleteRecord(ctx, cred.AccessToken, cred.DID, schemas.CollectionAddress, rkey); derr != nil {
		uc.logger.Warn("compensating delete failed, address orphaned", "uri", ref.URI, "error", derr)
	}
}
