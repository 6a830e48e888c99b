package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/synaptica-ai/life-expectancy/pkg/stage"
	"gopkg.in/yaml.v3"
)

type Image struct {
	File    string `yaml:"file" json:"file"`
	AltText string `yaml:"alt" json:"alt"`
}

// Catalog maps stage illustration keys to image files.
type Catalog struct {
	Dir    string           `yaml:"dir" json:"dir"`
	Width  int              `yaml:"width" json:"width"`
	Height int              `yaml:"height" json:"height"`
	Images map[string]Image `yaml:"images" json:"images"`
}

// LoadCatalog reads a YAML catalog. An empty path yields DefaultCatalog, and
// so does every error path.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}

	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return DefaultCatalog(), err
	}
	if len(cat.Images) == 0 {
		return DefaultCatalog(), errors.New("asset catalog has no images")
	}
	for _, s := range stage.All {
		if _, ok := cat.Images[s.Illustration()]; !ok {
			return DefaultCatalog(), fmt.Errorf("asset catalog missing %q", s.Illustration())
		}
	}
	if cat.Width <= 0 {
		cat.Width = 300
	}
	if cat.Height <= 0 {
		cat.Height = 300
	}
	return cat, nil
}

func DefaultCatalog() Catalog {
	return Catalog{
		Dir:    "images",
		Width:  300,
		Height: 300,
		Images: map[string]Image{
			stage.Critical.Illustration():  {File: "critical_image.jpg", AltText: "Critical health stage"},
			stage.AtRisk.Illustration():    {File: "at_risk_image.jpg", AltText: "At risk health stage"},
			stage.Unhealthy.Illustration(): {File: "unhealthy_image.jpg", AltText: "Unhealthy health stage"},
			stage.Healthy.Illustration():   {File: "healthy_image.jpg", AltText: "Healthy health stage"},
		},
	}
}
