package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// DBTX is the subset of pgx used by Postgres.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const (
	entityTypeQuery = `SELECT entity_type_id, entity_type_code
FROM eav_entity_type
WHERE entity_type_code = $1`

	attributeQuery = `SELECT attribute_code, entity_type_id, frontend_input
FROM eav_attribute
WHERE entity_type_id = $1 AND attribute_code = $2`

	attributesQuery = `SELECT attribute_code, entity_type_id, frontend_input
FROM eav_attribute
WHERE entity_type_id = $1
ORDER BY attribute_code`
)

// Postgres reads entity types and attributes from the EAV tables.
type Postgres struct {
	db DBTX
}

// NewPostgres returns a directory backed by db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// EntityType implements codec.Directory.
func (p *Postgres) EntityType(ctx context.Context, code string) (codec.EntityType, error) {
	var (
		id       int32
		typeCode string
	)
	err := p.db.QueryRow(ctx, entityTypeQuery, code).Scan(&id, &typeCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return codec.EntityType{}, fmt.Errorf("%q: %w", code, codec.ErrEntityTypeNotFound)
	}
	if err != nil {
		return codec.EntityType{}, fmt.Errorf("query entity type %q: %w", code, err)
	}
	return codec.EntityType{ID: int(id), Code: typeCode}, nil
}

// Attribute implements codec.Directory.
func (p *Postgres) Attribute(ctx context.Context, entityTypeID int, code string) (codec.AttributeDescriptor, error) {
	row := p.db.QueryRow(ctx, attributeQuery, int32(entityTypeID), code)
	desc, err := scanAttribute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return codec.AttributeDescriptor{}, fmt.Errorf("%q: %w", code, codec.ErrAttributeNotFound)
	}
	if err != nil {
		return codec.AttributeDescriptor{}, fmt.Errorf("query attribute %q: %w", code, err)
	}
	return desc, nil
}

// Attributes returns every attribute of an entity type ordered by code.
func (p *Postgres) Attributes(ctx context.Context, entityTypeID int) ([]codec.AttributeDescriptor, error) {
	rows, err := p.db.Query(ctx, attributesQuery, int32(entityTypeID))
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	var result []codec.AttributeDescriptor
	for rows.Next() {
		desc, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		result = append(result, desc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributes: %w", err)
	}
	return result, nil
}

// scanAttribute reads one eav_attribute row. frontend_input is nullable.
func scanAttribute(row pgx.Row) (codec.AttributeDescriptor, error) {
	var (
		code          string
		entityTypeID  int32
		frontendInput pgtype.Text
	)
	if err := row.Scan(&code, &entityTypeID, &frontendInput); err != nil {
		return codec.AttributeDescriptor{}, err
	}

	desc := codec.AttributeDescriptor{
		Code:          code,
		EntityTypeID:  int(entityTypeID),
		FrontendInput: codec.InputPlain,
	}
	if frontendInput.Valid {
		desc.FrontendInput = codec.ParseInputType(frontendInput.String)
	}
	return desc, nil
}
