package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-booking/models"

	"gorm.io/gorm"
)

type HotelSettingsInput struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	AdminEmail string `json:"adminEmail"`
	Website    string `json:"website"`
	Logo       string `json:"logo"`
}

// SettingsService keeps the single hotel settings row.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the empty settings when none have been saved yet.
func (s *SettingsService) Get(ctx context.Context) (models.HotelSetting, error) {
	var hotel models.HotelSetting
	if err := s.DB.WithContext(ctx).First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HotelSetting{}, nil
		}
		return hotel, fmt.Errorf("load hotel settings: %w", err)
	}
	return hotel, nil
}

func (s *SettingsService) Update(ctx context.Context, in HotelSettingsInput) (models.HotelSetting, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.HotelSetting{}, fmt.Errorf("%w: hotel name is required", ErrInvalidSettings)
	}

	var hotel models.HotelSetting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&hotel).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hotel.Name = strings.TrimSpace(in.Name)
		hotel.Address = strings.TrimSpace(in.Address)
		hotel.Phone = strings.TrimSpace(in.Phone)
		hotel.Email = strings.TrimSpace(in.Email)
		hotel.AdminEmail = strings.TrimSpace(in.AdminEmail)
		hotel.Website = strings.TrimSpace(in.Website)
		hotel.Logo = strings.TrimSpace(in.Logo)

		return tx.Save(&hotel).Error
	})
	if err != nil {
		return models.HotelSetting{}, fmt.Errorf("save hotel settings: %w", err)
	}
	return hotel, nil
}
