package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownCompany = errors.New("unknown company")

//go:embed companies.toml
var defaultCompanies []byte

// Company is one work history entry.
type Company struct {
	ID           string   `json:"id" toml:"id"`
	Name         string   `json:"name" toml:"name"`
	Logo         string   `json:"logo" toml:"logo"`
	Description  string   `json:"description" toml:"description"`
	Role         string   `json:"role" toml:"role"`
	Duration     string   `json:"duration" toml:"duration"`
	Location     string   `json:"location" toml:"location"`
	Website      string   `json:"website" toml:"website"`
	Technologies []string `json:"technologies" toml:"technologies"`
	Achievements []string `json:"achievements" toml:"achievements"`
}

// Catalog is the ordered company list. It is immutable after loading.
type Catalog struct {
	companies []Company
	byID      map[string]int
}

type catalogFile struct {
	Company []Company `toml:"company"`
}

// LoadCatalog reads a TOML catalog from path, falling back to the built-in
// catalog when path is empty or does not exist.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read company catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCompanies)
	if err != nil {
		panic(fmt.Sprintf("built-in company catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes a TOML document of [[company]] tables.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse company catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(file.Company))}
	for _, company := range file.Company {
		if company.ID == "" || company.Name == "" {
			return nil, fmt.Errorf("parse company catalog: entry %d needs id and name", len(c.companies))
		}
		if _, dup := c.byID[company.ID]; dup {
			return nil, fmt.Errorf("parse company catalog: duplicate id %q", company.ID)
		}
		c.byID[company.ID] = len(c.companies)
		c.companies = append(c.companies, company)
	}
	return c, nil
}

// Get returns a company by id.
func (c *Catalog) Get(id string) (Company, error) {
	i, ok := c.byID[id]
	if !ok {
		return Company{}, fmt.Errorf("%w: %s", ErrUnknownCompany, id)
	}
	return c.companies[i], nil
}

// List returns the companies in catalog order.
func (c *Catalog) List() []Company {
	out := make([]Company, len(c.companies))
	copy(out, c.companies)
	return out
}

// CompanyName resolves display names for process and taskbar views.
func (c *Catalog) CompanyName(id string) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.companies[i].Name, true
}
