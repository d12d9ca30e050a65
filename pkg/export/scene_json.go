package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/version"
)

// SceneDump is the JSON form of a rendered chart, for tooling and tests
// that want positions without parsing SVG.
type SceneDump struct {
	Version string             `json:"version"`
	Layout  chart.Layout       `json:"layout"`
	Ticks   []float64          `json:"ticks"`
	Records []model.Record     `json:"records"`
	Legend  []chart.LegendItem `json:"legend"`
	Scene   *chart.Scene       `json:"scene"`
	Page    PageState          `json:"interaction"`
}

// NewSceneDump captures the chart's current state.
func NewSceneDump(c *chart.Chart) SceneDump {
	return SceneDump{
		Version: version.Version,
		Layout:  c.Layout(),
		Ticks:   c.Ticks(),
		Records: c.Dataset().Records(),
		Legend:  c.Legend(),
		Scene:   c.Scene(),
		Page:    BuildPageState(c),
	}
}

// WriteSceneJSON writes an indented SceneDump.
func WriteSceneJSON(w io.Writer, c *chart.Chart) error {
	data, err := json.MarshalIndent(NewSceneDump(c), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
