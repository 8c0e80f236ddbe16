package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// AutosaveKeep is how many autosave snapshots are retained. Older ones
// are pruned on every new autosave.
const AutosaveKeep = 5

// Project represents a saved drawing: the canvas encoded as PNG plus the
// brush setup it was drawn with.
type Project struct {
	ID           string
	Name         string
	Canvas       []byte
	Width        int
	Height       int
	BrushColor   string
	BrushSize    int
	BrushOpacity float64
	EraserRadius int
	Autosave     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks that a project can be stored.
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("project name must not be empty")
	}
	if len(p.Canvas) == 0 {
		return errors.New("project canvas must not be empty")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New("project dimensions must be positive")
	}
	return nil
}

// ProjectRepository provides CRUD operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// Projects returns the project repository for this store.
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{db: s.db}
}

// Create inserts a new project. An empty ID is assigned a fresh UUID.
func (r *ProjectRepository) Create(p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO projects (id, name, canvas, width, height, brush_color, brush_size, brush_opacity, eraser_radius, autosave, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Canvas, p.Width, p.Height, p.BrushColor, p.BrushSize, p.BrushOpacity, p.EraserRadius, boolToInt(p.Autosave), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(id string) (*Project, error) {
	p := &Project{}
	var autosave int

	err := r.db.QueryRow(
		`SELECT id, name, canvas, width, height, brush_color, brush_size, brush_opacity, eraser_radius, autosave, created_at, updated_at
		 FROM projects WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Canvas, &p.Width, &p.Height, &p.BrushColor, &p.BrushSize, &p.BrushOpacity, &p.EraserRadius, &autosave, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Autosave = autosave != 0
	return p, nil
}

// List retrieves all manually saved projects, newest first. Autosaves
// are excluded; use Autosaves for those.
func (r *ProjectRepository) List() ([]*Project, error) {
	return r.list(`SELECT id, name, width, height, brush_color, brush_size, brush_opacity, eraser_radius, autosave, created_at, updated_at
		 FROM projects WHERE autosave = 0 ORDER BY updated_at DESC`)
}

// Autosaves retrieves the retained autosave snapshots, newest first.
func (r *ProjectRepository) Autosaves() ([]*Project, error) {
	return r.list(`SELECT id, name, width, height, brush_color, brush_size, brush_opacity, eraser_radius, autosave, created_at, updated_at
		 FROM projects WHERE autosave = 1 ORDER BY updated_at DESC`)
}

// list runs a projection query that omits the canvas blob. Listings only
// need metadata; the blob is loaded on demand via GetByID.
func (r *ProjectRepository) list(query string) ([]*Project, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		var autosave int

		err := rows.Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.BrushColor, &p.BrushSize, &p.BrushOpacity, &p.EraserRadius, &autosave, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}

		p.Autosave = autosave != 0
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// Update replaces the stored canvas and brush setup of an existing project.
func (r *ProjectRepository) Update(p *Project) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE projects SET name = ?, canvas = ?, width = ?, height = ?, brush_color = ?, brush_size = ?, brush_opacity = ?, eraser_radius = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Canvas, p.Width, p.Height, p.BrushColor, p.BrushSize, p.BrushOpacity, p.EraserRadius, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a project from the database by its ID.
func (r *ProjectRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveAutosave stores an autosave snapshot and prunes the history down
// to AutosaveKeep entries.
func (r *ProjectRepository) SaveAutosave(p *Project) error {
	snapshot := *p
	snapshot.ID = uuid.NewString()
	snapshot.Autosave = true
	if snapshot.Name == "" {
		snapshot.Name = "autosave"
	}

	if err := r.Create(&snapshot); err != nil {
		return err
	}

	_, err := r.db.Exec(
		`DELETE FROM projects WHERE autosave = 1 AND id NOT IN (
			SELECT id FROM projects WHERE autosave = 1 ORDER BY updated_at DESC, created_at DESC LIMIT ?
		)`,
		AutosaveKeep,
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
