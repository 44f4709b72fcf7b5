package usecase

import (
	"context"

	anchor "github.com/dropanchor/anchor-go"
	"github.com/dropanchor/anchor-go/internal/domain"
	"github.com/dropanchor/anchor-go/schemas"
)

// RecordService is the remote repository surface: create/delete/get over
// tagged records, addressed by repo + collection + record key.
type RecordService interface {
	CreateRecord(ctx context.Context, token, repo, collection string, record schemas.Record) (anchor.StrongRef, error)
	DeleteRecord(ctx context.Context, token, repo, collection, rkey string) error
	GetRecord(ctx context.Context, repo, collection, rkey string, fresh bool) (*anchor.RecordEnvelope, error)
}

// CredentialSource supplies a valid credential on demand, refreshing if it
// has to. Every write path depends on it.
type CredentialSource interface {
	GetValidCredentials(ctx context.Context) (*domain.Credential, error)
}

// Journal is the local log of successful check-ins.
type Journal interface {
	Append(ctx context.Context, entry domain.CheckinEntry) (int64, error)
	List(ctx context.Context, limit int) ([]domain.CheckinEntry, error)
	MarkVerified(ctx context.Context, id int64, ok bool) error
}
