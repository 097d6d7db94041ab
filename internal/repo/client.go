package repo

import (
	"context"
	"errors"
	"fmt"

	"lexfirm-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrClientNotFound indicates the client does not exist in the firm.
	ErrClientNotFound = errors.New("client not found")

	// ErrClientInUse indicates the client still has cases and cannot be deleted.
	ErrClientInUse = errors.New("client has cases and cannot be deleted")
)

// ClientRepository handles database operations for firm clients. Every query
// is scoped by firm_id so a client id from another firm behaves as absent.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository instance.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create inserts a client into the firm.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, full_name, email, phone, client_type, status, firm_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		client.ID, client.FullName, client.Email, client.Phone,
		client.ClientType, client.Status, client.FirmID, client.UserID,
	).Scan(&client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	return nil
}

// Get retrieves a client by id within the firm.
func (r *ClientRepository) Get(ctx context.Context, firmID, clientID string) (*domain.Client, error) {
	query := `
		SELECT id, full_name, email, phone, client_type, status, firm_id, user_id, created_at, updated_at
		FROM clients
		WHERE id = $1 AND firm_id = $2
	`

	var c domain.Client
	err := r.pool.QueryRow(ctx, query, clientID, firmID).Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.ClientType,
		&c.Status, &c.FirmID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("query client: %w", err)
	}

	return &c, nil
}

// GetByUser resolves the client record linked to a portal login in the firm.
func (r *ClientRepository) GetByUser(ctx context.Context, firmID, userID string) (*domain.Client, error) {
	query := `
		SELECT id, full_name, email, phone, client_type, status, firm_id, user_id, created_at, updated_at
		FROM clients
		WHERE user_id = $1 AND firm_id = $2
	`

	var c domain.Client
	err := r.pool.QueryRow(ctx, query, userID, firmID).Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.ClientType,
		&c.Status, &c.FirmID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("query client by user: %w", err)
	}

	return &c, nil
}

// List returns all clients of the firm, newest first.
func (r *ClientRepository) List(ctx context.Context, firmID string) ([]domain.Client, error) {
	query := `
		SELECT id, full_name, email, phone, client_type, status, firm_id, user_id, created_at, updated_at
		FROM clients
		WHERE firm_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		err := rows.Scan(
			&c.ID, &c.FullName, &c.Email, &c.Phone, &c.ClientType,
			&c.Status, &c.FirmID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

// ExistsInFirm reports whether the client id belongs to the firm.
func (r *ClientRepository) ExistsInFirm(ctx context.Context, firmID, clientID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1 AND firm_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, clientID, firmID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check client in firm: %w", err)
	}

	return exists, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *ClientRepository) Update(ctx context.Context, firmID, clientID string, req *domain.UpdateClientRequest) (*domain.Client, error) {
	query := `
		UPDATE clients
		SET full_name = COALESCE($3, full_name),
		    email = COALESCE($4, email),
		    phone = COALESCE($5, phone),
		    client_type = COALESCE($6, client_type),
		    status = COALESCE($7, status),
		    updated_at = now()
		WHERE id = $1 AND firm_id = $2
		RETURNING id, full_name, email, phone, client_type, status, firm_id, user_id, created_at, updated_at
	`

	var c domain.Client
	err := r.pool.QueryRow(ctx, query,
		clientID, firmID, req.FullName, req.Email, req.Phone, req.ClientType, req.Status,
	).Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.ClientType,
		&c.Status, &c.FirmID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	return &c, nil
}

// Delete removes a client from the firm. A client still referenced by a case
// fails with ErrClientInUse.
func (r *ClientRepository) Delete(ctx context.Context, firmID, clientID string) error {
	query := `DELETE FROM clients WHERE id = $1 AND firm_id = $2`

	tag, err := r.pool.Exec(ctx, query, clientID, firmID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrClientInUse
		}
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}
