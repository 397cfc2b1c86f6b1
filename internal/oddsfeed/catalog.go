package oddsfeed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mapeamento entre as chaves de mercado do provedor e as nossas.
var providerMarkets = map[string]string{
	"h2h":     "moneyline",
	"spreads": "spread",
	"totals":  "total",
}

// CatalogSport é um esporte habilitado no catálogo do poller.
type CatalogSport struct {
	Key     string   `yaml:"key"`     // chave do provedor, ex: "americanfootball_nfl"
	Title   string   `yaml:"title"`   // nome de exibição
	Markets []string `yaml:"markets"` // mercados do provedor: h2h, spreads, totals
	Enabled bool     `yaml:"enabled"`
}

// Catalog define quais esportes e mercados o poller acompanha.
type Catalog struct {
	Sports []CatalogSport `yaml:"sports"`
}

// LoadCatalog lê o catálogo YAML e valida os mercados declarados.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(c.Sports) == 0 {
		return nil, fmt.Errorf("catalog %s has no sports", path)
	}
	for _, s := range c.Sports {
		if s.Key == "" {
			return nil, fmt.Errorf("catalog sport without key")
		}
		for _, m := range s.Markets {
			if _, ok := providerMarkets[m]; !ok {
				return nil, fmt.Errorf("catalog sport %s: unknown market %q", s.Key, m)
			}
		}
	}
	return &c, nil
}

// Active retorna só os esportes habilitados.
func (c *Catalog) Active() []CatalogSport {
	var out []CatalogSport
	for _, s := range c.Sports {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
