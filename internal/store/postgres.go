package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/brandforge/creative-console/internal/model"
)

// Postgres is the production record store.
type Postgres struct {
	db        *sql.DB
	brands    *brandRepo
	assets    *assetRepo
	profiles  *profileRepo
	snapshots *snapshotRepo
}

// NewPostgres opens a connection pool and wires the per-entity repositories.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Postgres{
		db:        db,
		brands:    &brandRepo{db: db},
		assets:    &assetRepo{db: db},
		profiles:  &profileRepo{db: db},
		snapshots: &snapshotRepo{db: db},
	}, nil
}

func (p *Postgres) Brands() BrandStore       { return p.brands }
func (p *Postgres) Assets() AssetStore       { return p.assets }
func (p *Postgres) Profiles() ProfileStore   { return p.profiles }
func (p *Postgres) Snapshots() SnapshotStore { return p.snapshots }

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

type brandRepo struct {
	db *sql.DB
}

func (r *brandRepo) List(ctx context.Context, userID string) ([]model.Brand, error) {
	query := `
		SELECT id, user_id, name, website, socials, competitors, reference_images, kit, created_at, updated_at
		FROM brands
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		var b model.Brand
		var socials, competitors, refs, kit []byte
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Website, &socials, &competitors, &refs, &kit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		unmarshalColumn(socials, &b.Socials)
		unmarshalColumn(competitors, &b.Competitors)
		unmarshalColumn(refs, &b.ReferenceImages)
		unmarshalColumn(kit, &b.Kit)
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *brandRepo) Save(ctx context.Context, userID string, b *model.Brand) (*model.Brand, error) {
	saved := *b
	saved.UserID = userID
	saved.UpdatedAt = time.Now()

	socials, _ := json.Marshal(saved.Socials)
	competitors, _ := json.Marshal(saved.Competitors)
	refs, _ := json.Marshal(saved.ReferenceImages)
	kit, _ := json.Marshal(saved.Kit)

	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
		query := `
			INSERT INTO brands (id, user_id, name, website, socials, competitors, reference_images, kit, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := r.db.ExecContext(ctx, query,
			saved.ID, saved.UserID, saved.Name, saved.Website, socials, competitors, refs, kit, saved.CreatedAt, saved.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to insert brand: %w", err)
		}
		return &saved, nil
	}

	query := `
		UPDATE brands
		SET name = $2, website = $3, socials = $4, competitors = $5, reference_images = $6, kit = $7, updated_at = $8
		WHERE id = $1 AND user_id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.Name, saved.Website, socials, competitors, refs, kit, saved.UpdatedAt, saved.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &saved, nil
}

func (r *brandRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return nil
}

type assetRepo struct {
	db *sql.DB
}

const assetColumns = `id, user_id, brand_id, group_id, group_title, name, type, dimensions,
	image_url, video_url, audio_url, prompt, copy, description, status, performance, generation_meta,
	created_at, updated_at`

func (r *assetRepo) List(ctx context.Context, userID string) ([]model.DesignAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []model.DesignAsset
	for rows.Next() {
		var a model.DesignAsset
		var userID string
		var perf, meta []byte
		if err := rows.Scan(
			&a.ID, &userID, &a.BrandID, &a.GroupID, &a.GroupTitle, &a.Name, &a.Type, &a.Dimensions,
			&a.ImageURL, &a.VideoURL, &a.AudioURL, &a.Prompt, &a.Copy, &a.Description, &a.Status, &perf, &meta,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		unmarshalColumn(perf, &a.Performance)
		if len(meta) > 0 {
			a.GenerationMeta = json.RawMessage(meta)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *assetRepo) Save(ctx context.Context, userID string, a *model.DesignAsset) (*model.DesignAsset, error) {
	saved := *a
	saved.UpdatedAt = time.Now()
	if saved.Status == "" {
		saved.Status = model.AssetStatusPending
	}

	perf, _ := json.Marshal(saved.Performance)
	meta := []byte(saved.GenerationMeta)
	if meta == nil {
		meta = []byte("null")
	}

	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
		query := `
			INSERT INTO assets (` + assetColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`
		if _, err := r.db.ExecContext(ctx, query,
			saved.ID, userID, saved.BrandID, saved.GroupID, saved.GroupTitle, saved.Name, saved.Type, saved.Dimensions,
			saved.ImageURL, saved.VideoURL, saved.AudioURL, saved.Prompt, saved.Copy, saved.Description, saved.Status, perf, meta,
			saved.CreatedAt, saved.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to insert asset: %w", err)
		}
		return &saved, nil
	}

	query := `
		UPDATE assets
		SET group_id = $2, group_title = $3, name = $4, type = $5, dimensions = $6,
			image_url = $7, video_url = $8, audio_url = $9, prompt = $10, copy = $11,
			description = $12, status = $13, performance = $14, generation_meta = $15, updated_at = $16
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.GroupID, saved.GroupTitle, saved.Name, saved.Type, saved.Dimensions,
		saved.ImageURL, saved.VideoURL, saved.AudioURL, saved.Prompt, saved.Copy,
		saved.Description, saved.Status, perf, meta, saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &saved, nil
}

func (r *assetRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func (r *assetRepo) DeleteByGroup(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete asset group: %w", err)
	}
	return nil
}

func (r *assetRepo) UpdateGroupTitle(ctx context.Context, groupID, title string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assets SET group_title = $2, updated_at = $3 WHERE group_id = $1`,
		groupID, title, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update group title: %w", err)
	}
	return nil
}

func (r *assetRepo) UpdatePerformance(ctx context.Context, id string, perf model.Performance) error {
	data, _ := json.Marshal(perf)
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET performance = $2, updated_at = $3 WHERE id = $1`,
		id, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update performance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepo) ReassignBrand(ctx context.Context, oldBrandID, newBrandID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assets SET brand_id = $2, updated_at = $3 WHERE brand_id = $1`,
		oldBrandID, newBrandID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to reassign assets: %w", err)
	}
	return nil
}

func (r *assetRepo) DeleteByBrand(ctx context.Context, brandID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE brand_id = $1`, brandID)
	if err != nil {
		return fmt.Errorf("failed to delete brand assets: %w", err)
	}
	return nil
}

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
		SELECT id, user_id, email, display_name, locale, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p model.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Email, &p.DisplayName, &p.Locale, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, userID string, p *model.Profile) (*model.Profile, error) {
	saved := *p
	saved.UserID = userID
	saved.UpdatedAt = time.Now()
	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
	}

	query := `
		INSERT INTO profiles (id, user_id, email, display_name, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET email = $3, display_name = $4, locale = $5, updated_at = $7
	`
	if _, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.UserID, saved.Email, saved.DisplayName, saved.Locale, saved.CreatedAt, saved.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &saved, nil
}

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Load(ctx context.Context, userID string) (*model.LegacySnapshot, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM legacy_projects WHERE user_id = $1`, userID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy snapshot: %w", err)
	}
	return DecodeLegacySnapshot(data)
}

// unmarshalColumn decodes a nullable jsonb column, leaving dst zero when the
// column is empty.
func unmarshalColumn(data []byte, dst any) {
	if len(data) == 0 || string(data) == "null" {
		return
	}
	_ = json.Unmarshal(data, dst)
}
