package storage

import (
	"context"

	"listings-aggregator/models"
)

// BuiltinSource serves a fixed list of properties.
type BuiltinSource struct {
	listings []models.Property
}

// NewBuiltinSource returns the sample collection.
func NewBuiltinSource() *BuiltinSource {
	return &BuiltinSource{listings: []models.Property{
		{Location: "Downtown", Type: "Apartment", Price: 300000, Size: 80},
		{Location: "Suburbs", Type: "House", Price: 750000, Size: 200},
		{Location: "City Center", Type: "Apartment", Price: 450000, Size: 120},
		{Location: "Outskirts", Type: "House", Price: 1200000, Size: 250},
		{Location: "Urban", Type: "Apartment", Price: 200000, Size: 60},
	}}
}

// NewBuiltinIncoming returns the sample listings merged by the fetch demo.
func NewBuiltinIncoming() *BuiltinSource {
	return &BuiltinSource{listings: []models.Property{
		{Location: "New Area", Type: "House", Price: 600000, Size: 180},
		{Location: "Modern District", Type: "Apartment", Price: 900000, Size: 150},
	}}
}

func (b *BuiltinSource) Load(_ context.Context) ([]models.Property, error) {
	return append([]models.Property(nil), b.listings...), nil
}

func (b *BuiltinSource) Close() error { return nil }
