package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

type fixtures struct {
	Instructions []instructionFixture  `yaml:"instructions"`
	KitItems     []kitItemFixture      `yaml:"kit_items"`
	Shelters     []shelterFixture      `yaml:"shelters"`
	Orgs         []organizationFixture `yaml:"organizations"`
}

type instructionFixture struct {
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
	DisasterType string `yaml:"disaster_type"`
}

type kitItemFixture struct {
	ItemName    string `yaml:"item_name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

type shelterFixture struct {
	Name      string `yaml:"name"`
	Latitude  any    `yaml:"latitude"`
	Longitude any    `yaml:"longitude"`
	Capacity  *int   `yaml:"capacity"`
	IsOpen    *bool  `yaml:"is_open"`
}

type organizationFixture struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Contact     string `yaml:"contact"`
	Email       string `yaml:"email"`
	Website     string `yaml:"website"`
	Address     string `yaml:"address"`
	Latitude    any    `yaml:"latitude"`
	Longitude   any    `yaml:"longitude"`
	IsActive    *bool  `yaml:"is_active"`
}

func loadFixtures(r io.Reader) (*fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &fx, nil
}

// validate rejects rows the API would serve broken: unnamed rows and
// coordinates outside the valid ranges.
func (fx *fixtures) validate() error {
	var errs []error
	for i, in := range fx.Instructions {
		if in.Title == "" || in.Content == "" {
			errs = append(errs, fmt.Errorf("instructions[%d]: title and content are required", i))
		}
	}
	for i, k := range fx.KitItems {
		if k.ItemName == "" {
			errs = append(errs, fmt.Errorf("kit_items[%d]: item_name is required", i))
		}
	}
	for i, s := range fx.Shelters {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("shelters[%d]: name is required", i))
		}
		if !domain.ValidateCoordinates(s.Latitude, s.Longitude) {
			errs = append(errs, fmt.Errorf("shelters[%d] %q: invalid coordinates (%v, %v)", i, s.Name, s.Latitude, s.Longitude))
		}
	}
	for i, o := range fx.Orgs {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("organizations[%d]: name is required", i))
		}
		if o.Latitude == nil && o.Longitude == nil {
			continue
		}
		if !domain.ValidateCoordinates(o.Latitude, o.Longitude) {
			errs = append(errs, fmt.Errorf("organizations[%d] %q: invalid coordinates (%v, %v)", i, o.Name, o.Latitude, o.Longitude))
		}
	}
	return errors.Join(errs...)
}

func (fx *fixtures) instructions() []domain.Instruction {
	out := make([]domain.Instruction, len(fx.Instructions))
	for i, in := range fx.Instructions {
		out[i] = domain.Instruction{Title: in.Title, Content: in.Content, DisasterType: in.DisasterType}
	}
	return out
}

func (fx *fixtures) kitItems() []domain.KitItem {
	out := make([]domain.KitItem, len(fx.KitItems))
	for i, k := range fx.KitItems {
		out[i] = domain.KitItem{ItemName: k.ItemName, Description: k.Description, Category: k.Category}
	}
	return out
}

// shelters assumes validate has passed.
func (fx *fixtures) shelters() []domain.Shelter {
	out := make([]domain.Shelter, len(fx.Shelters))
	for i, s := range fx.Shelters {
		lat, _ := domain.ParseCoordinate(s.Latitude)
		lng, _ := domain.ParseCoordinate(s.Longitude)
		out[i] = domain.Shelter{
			Name:      s.Name,
			Latitude:  lat,
			Longitude: lng,
			Capacity:  s.Capacity,
			IsOpen:    boolOr(s.IsOpen, true),
		}
	}
	return out
}

func (fx *fixtures) organizations() []domain.Organization {
	out := make([]domain.Organization, len(fx.Orgs))
	for i, o := range fx.Orgs {
		org := domain.Organization{
			Name:        o.Name,
			Type:        o.Type,
			Description: o.Description,
			Contact:     o.Contact,
			Email:       o.Email,
			Website:     o.Website,
			Address:     o.Address,
			IsActive:    boolOr(o.IsActive, true),
		}
		if lat, ok := domain.ParseCoordinate(o.Latitude); ok {
			org.Latitude = &lat
		}
		if lng, ok := domain.ParseCoordinate(o.Longitude); ok {
			org.Longitude = &lng
		}
		out[i] = org
	}
	return out
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
