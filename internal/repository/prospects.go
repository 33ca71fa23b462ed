package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/prospect-agent/internal/entity"
)

// pgxPool is the subset of pgxpool.Pool the repository needs.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// Stats summarises the prospect table.
type Stats struct {
	Total     int `json:"total"`
	WithEmail int `json:"with_email"`
	Processed int `json:"processed"`
}

// ListFilter narrows and paginates prospect listings.
type ListFilter struct {
	Status   string
	MinScore *int
	Page     int
	PerPage  int
}

// ProspectsRepository describes persistence operations for prospects.
type ProspectsRepository interface {
	Exists(ctx context.Context, name, website string) (bool, error)
	Upsert(ctx context.Context, prospect *entity.Prospect) (*uuid.UUID, error)
	List(ctx context.Context, filter ListFilter) ([]entity.Prospect, error)
	Stats(ctx context.Context) (Stats, error)
}

// PGXProspectsRepository implements ProspectsRepository using pgx.
type PGXProspectsRepository struct {
	pool pgxPool
}

// NewPGXProspectsRepository wires a pgx backed repository.
func NewPGXProspectsRepository(pool *pgxpool.Pool) *PGXProspectsRepository {
	return &PGXProspectsRepository{pool: pool}
}

// Exists reports whether a prospect with the same name and website is
// already persisted. Matching is case-insensitive.
func (r *PGXProspectsRepository) Exists(ctx context.Context, name, website string) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM prospects
            WHERE LOWER(name) = LOWER($1)
              AND LOWER(COALESCE(website, '')) = LOWER($2)
        )
    `, name, website).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check prospect existence: %w", err)
	}
	return found, nil
}

// Upsert inserts a prospect and returns its id. A duplicate on
// (name, website) is treated as benign: nil id, nil error.
func (r *PGXProspectsRepository) Upsert(ctx context.Context, prospect *entity.Prospect) (*uuid.UUID, error) {
	if prospect == nil {
		return nil, fmt.Errorf("prospect payload is nil")
	}

	query := `
        INSERT INTO prospects (
            name,
            website,
            phone,
            description,
            email,
            email_status,
            email_sub_status,
            email_suggestion,
            contact_name,
            contact_role,
            linkedin_url,
            address,
            company_size,
            industry,
            revenue,
            rating,
            reviews,
            technologies,
            score,
            message,
            highlighted_point,
            reason,
            proposal,
            template_id,
            source,
            status,
            added_at,
            processed_at,
            updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
            $21, $22, $23, $24, $25, $26, NOW(), $27, NOW()
        )
        RETURNING id;
    `

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		prospect.Name,
		prospect.Website,
		prospect.Phone,
		prospect.Description,
		prospect.Email,
		prospect.EmailStatus,
		prospect.EmailSubStatus,
		prospect.EmailSuggestion,
		prospect.ContactName,
		prospect.ContactRole,
		prospect.LinkedInURL,
		prospect.Address,
		prospect.CompanySize,
		prospect.Industry,
		prospect.Revenue,
		prospect.Rating,
		prospect.Reviews,
		techOrEmpty(prospect.Technologies),
		prospect.Score,
		prospect.Message,
		prospect.HighlightedPoint,
		prospect.Reason,
		prospect.Proposal,
		prospect.TemplateID,
		prospect.Source,
		statusOrDefault(prospect.Status),
		prospect.ProcessedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil
		}
		return nil, fmt.Errorf("insert prospect: %w", err)
	}

	prospect.ID = id
	return &id, nil
}

// List retrieves prospects matching the filter, best scores first.
func (r *PGXProspectsRepository) List(ctx context.Context, filter ListFilter) ([]entity.Prospect, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`
        SELECT
            id,
            name,
            website,
            phone,
            description,
            email,
            email_status,
            email_sub_status,
            email_suggestion,
            contact_name,
            contact_role,
            linkedin_url,
            address,
            company_size,
            industry,
            revenue,
            rating,
            reviews,
            technologies,
            score,
            message,
            highlighted_point,
            reason,
            proposal,
            template_id,
            source,
            status,
            added_at,
            processed_at
        FROM prospects
    `)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.MinScore != nil {
		clauses = append(clauses, fmt.Sprintf("score >= $%d", idx))
		args = append(args, *filter.MinScore)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}

	baseQuery.WriteString(" ORDER BY score DESC, added_at DESC, name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()

	return scanProspects(rows)
}

// Stats aggregates prospect counts for monitoring.
func (r *PGXProspectsRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE email IS NOT NULL AND email <> ''),
            COUNT(*) FILTER (WHERE status = $1)
        FROM prospects
    `, entity.StatusProcessed).Scan(&stats.Total, &stats.WithEmail, &stats.Processed)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate prospect stats: %w", err)
	}
	return stats, nil
}

func scanProspects(rows pgx.Rows) ([]entity.Prospect, error) {
	var prospects []entity.Prospect
	for rows.Next() {
		var (
			p            entity.Prospect
			website      sql.NullString
			phone        sql.NullString
			description  sql.NullString
			email        sql.NullString
			emailStatus  sql.NullString
			emailSub     sql.NullString
			emailSugg    sql.NullString
			contactName  sql.NullString
			contactRole  sql.NullString
			linkedin     sql.NullString
			address      sql.NullString
			companySize  sql.NullString
			industry     sql.NullString
			revenue      sql.NullString
			rating       sql.NullFloat64
			reviews      sql.NullInt64
			technologies []string
			templateID   sql.NullString
			processedAt  sql.NullTime
		)

		err := rows.Scan(
			&p.ID,
			&p.Name,
			&website,
			&phone,
			&description,
			&email,
			&emailStatus,
			&emailSub,
			&emailSugg,
			&contactName,
			&contactRole,
			&linkedin,
			&address,
			&companySize,
			&industry,
			&revenue,
			&rating,
			&reviews,
			&technologies,
			&p.Score,
			&p.Message,
			&p.HighlightedPoint,
			&p.Reason,
			&p.Proposal,
			&templateID,
			&p.Source,
			&p.Status,
			&p.AddedAt,
			&processedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}

		p.Website = nullStringToPtr(website)
		p.Phone = nullStringToPtr(phone)
		p.Description = nullStringToPtr(description)
		p.Email = nullStringToPtr(email)
		p.EmailStatus = nullStringToPtr(emailStatus)
		p.EmailSubStatus = nullStringToPtr(emailSub)
		p.EmailSuggestion = nullStringToPtr(emailSugg)
		p.ContactName = nullStringToPtr(contactName)
		p.ContactRole = nullStringToPtr(contactRole)
		p.LinkedInURL = nullStringToPtr(linkedin)
		p.Address = nullStringToPtr(address)
		p.CompanySize = nullStringToPtr(companySize)
		p.Industry = nullStringToPtr(industry)
		p.Revenue = nullStringToPtr(revenue)
		p.TemplateID = nullStringToPtr(templateID)
		if rating.Valid {
			val := rating.Float64
			p.Rating = &val
		}
		if reviews.Valid {
			cast := int(reviews.Int64)
			p.Reviews = &cast
		}
		if len(technologies) > 0 {
			p.Technologies = append([]string(nil), technologies...)
		}
		if processedAt.Valid {
			ts := processedAt.Time
			p.ProcessedAt = &ts
		}

		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prospects: %w", err)
	}
	return prospects, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func techOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func statusOrDefault(status string) string {
	if status == "" {
		return entity.StatusNew
	}
	return status
}
