// Package document tracks files uploaded for a group (invoices, prescriptions,
// warranties). The file itself lives in object storage; only its URL is kept here.
package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecloud/service/internal/db"
	"github.com/homecloud/service/internal/user"
)

// DefaultType is used when a document is created without a type.
const DefaultType = "other"

// Document is a stored file belonging to a group.
type Document struct {
	ID           uuid.UUID  `json:"id"`
	GroupID      uuid.UUID  `json:"groupId"`
	User         *user.User `json:"user"`
	FileName     string     `json:"fileName"`
	FileURL      string     `json:"fileUrl"`
	DocumentType string     `json:"documentType"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	Processed    bool       `json:"processed"`
}

// Input holds the writable fields of a Document. processed is maintained by
// the server and cannot be set by clients.
type Input struct {
	GroupID      uuid.UUID  `json:"groupId" validate:"required"`
	UserID       *uuid.UUID `json:"userId"`
	FileName     string     `json:"fileName" validate:"required,max=255" example:"invoice-2024-01.pdf"`
	FileURL      string     `json:"fileUrl" validate:"required,url,max=500" example:"https://acct.blob.core.windows.net/files/invoice-2024-01.pdf"`
	DocumentType string     `json:"documentType" validate:"oneof=invoice prescription warranty other" example:"invoice"`
}

// SetDefaults fills in the document type.
func (in *Input) SetDefaults() {
	if in.DocumentType == "" {
		in.DocumentType = DefaultType
	}
}

// Input returns the writable fields of d.
func (d *Document) Input() Input {
	in := Input{GroupID: d.GroupID, FileName: d.FileName, FileURL: d.FileURL, DocumentType: d.DocumentType}
	if d.User != nil {
		id := d.User.ID
		in.UserID = &id
	}
	return in
}

const selectDocuments = `SELECT d.id, d.group_id, d.file_name, d.file_url, d.document_type,
	d.uploaded_at, d.processed, ` + user.Columns + `
	FROM documents d LEFT JOIN users u ON u.id = d.user_id`

func scan(row pgx.Row) (*Document, error) {
	d := &Document{}
	var u user.Nullable
	targets := append([]interface{}{
		&d.ID, &d.GroupID, &d.FileName, &d.FileURL, &d.DocumentType, &d.UploadedAt, &d.Processed,
	}, u.ScanTargets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	d.User = u.User()
	return d, nil
}

// Repository handles all document database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns documents, newest first. A non-nil groupID restricts the result
// to that group.
func (r *Repository) List(ctx context.Context, groupID *uuid.UUID) ([]Document, error) {
	rows, err := r.db.Query(ctx,
		selectDocuments+` WHERE ($1::uuid IS NULL OR d.group_id = $1) ORDER BY d.uploaded_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, db.Classify("list documents", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		d, err := scan(row)
		if err != nil {
			return Document{}, err
		}
		return *d, nil
	})
	if err != nil {
		return nil, db.Classify("list documents", err)
	}
	return docs, nil
}

// GetByID fetches a document with its uploader.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := scan(r.db.QueryRow(ctx, selectDocuments+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, db.Classify("get document", err)
	}
	return d, nil
}

// Create inserts a document record.
func (r *Repository) Create(ctx context.Context, in Input) (*Document, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO documents (group_id, user_id, file_name, file_url, document_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		in.GroupID, in.UserID, in.FileName, in.FileURL, in.DocumentType,
	).Scan(&id)
	if err != nil {
		return nil, db.Classify("create document", err)
	}
	return r.GetByID(ctx, id)
}

// Update overwrites the writable fields of a document.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Document, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents
		 SET group_id = $2, user_id = $3, file_name = $4, file_url = $5, document_type = $6
		 WHERE id = $1`,
		id, in.GroupID, in.UserID, in.FileName, in.FileURL, in.DocumentType,
	)
	if err != nil {
		return nil, db.Classify("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, db.Classify("update document", pgx.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a document record. Tasks created from it keep existing with
// no document.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("delete document", pgx.ErrNoRows)
	}
	return nil
}
