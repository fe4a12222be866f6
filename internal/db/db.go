package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-fcmap/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

// Store keeps endpoints, zones and the SNMP switch inventory in SQLite.
type Store struct {
	DB *gorm.DB
}

func InitDB(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(&models.Endpoint{}, &models.Zone{}, &models.Switch{}, &models.PortStatus{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) FindEndpoint(ctx context.Context, wwpn string) (*models.Endpoint, error) {
	var ep models.Endpoint
	err := s.DB.WithContext(ctx).Where("wwpn = ?", strings.ToLower(wwpn)).First(&ep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// UpsertEndpoint replaces the stored record for ep.WWPN in full, or inserts
// it. It reports whether a new row was created.
func (s *Store) UpsertEndpoint(ctx context.Context, ep *models.Endpoint) (bool, error) {
	existing, err := s.FindEndpoint(ctx, ep.WWPN)
	switch {
	case err == nil:
		ep.ID = existing.ID
		return false, s.DB.WithContext(ctx).Save(ep).Error
	case errors.Is(err, ErrNotFound):
		ep.ID = 0
		return true, s.DB.WithContext(ctx).Create(ep).Error
	default:
		return false, err
	}
}

// SearchEndpoints returns endpoints whose WWPN contains pattern,
// case-insensitively, ordered by WWPN.
func (s *Store) SearchEndpoints(ctx context.Context, pattern string, limit int) ([]models.Endpoint, error) {
	var eps []models.Endpoint
	q := s.DB.WithContext(ctx).
		Where("wwpn LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(pattern))+"%").
		Order("wwpn asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&eps).Error; err != nil {
		return nil, err
	}
	return eps, nil
}

func (s *Store) ListEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	var eps []models.Endpoint
	if err := s.DB.WithContext(ctx).Order("switch_ip asc, port_index asc, wwpn asc").Find(&eps).Error; err != nil {
		return nil, err
	}
	return eps, nil
}

func (s *Store) FindZone(ctx context.Context, name string) (*models.Zone, error) {
	var z models.Zone
	err := s.DB.WithContext(ctx).Where("zone_name = ?", name).First(&z).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (s *Store) UpsertZone(ctx context.Context, z *models.Zone) (bool, error) {
	existing, err := s.FindZone(ctx, z.ZoneName)
	switch {
	case err == nil:
		z.ID = existing.ID
		return false, s.DB.WithContext(ctx).Save(z).Error
	case errors.Is(err, ErrNotFound):
		z.ID = 0
		return true, s.DB.WithContext(ctx).Create(z).Error
	default:
		return false, err
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
