package db

import (
	"context"
	"errors"

	"go-fcmap/internal/models"

	"gorm.io/gorm"
)

// UpsertSwitch stores the SNMP identity of a switch keyed by IP and fills
// sw.ID.
func (s *Store) UpsertSwitch(ctx context.Context, sw *models.Switch) error {
	var existing models.Switch
	err := s.DB.WithContext(ctx).Where("ip_address = ?", sw.IPAddress).First(&existing).Error
	switch {
	case err == nil:
		sw.ID = existing.ID
		return s.DB.WithContext(ctx).Save(sw).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.DB.WithContext(ctx).Create(sw).Error
	default:
		return err
	}
}

// RecordPortStatus stores a port's operational status, counting changes
// since the port was first seen.
func (s *Store) RecordPortStatus(ctx context.Context, switchID uint, idx int, name, status string) error {
	db := s.DB.WithContext(ctx)
	var existing models.PortStatus
	tx := db.Where("switch_id = ? AND port_index = ?", switchID, idx).First(&existing)
	if tx.Error == nil {
		if existing.Status == status && existing.PortName == name {
			return nil
		}
		if existing.Status != status {
			existing.StatusChanges++
		}
		existing.Status = status
		existing.PortName = name
		return db.Save(&existing).Error
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return tx.Error
	}
	return db.Create(&models.PortStatus{SwitchID: switchID, PortIndex: idx, PortName: name, Status: status}).Error
}

func (s *Store) ListSwitches(ctx context.Context) ([]models.Switch, error) {
	var switches []models.Switch
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&switches).Error; err != nil {
		return nil, err
	}
	return switches, nil
}

func (s *Store) PortStatuses(ctx context.Context, switchID uint) ([]models.PortStatus, error) {
	var ports []models.PortStatus
	err := s.DB.WithContext(ctx).
		Where("switch_id = ?", switchID).
		Order("port_index asc").
		Find(&ports).Error
	if err != nil {
		return nil, err
	}
	return ports, nil
}
