package dto

import (
	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
)

type ChartQuery struct {
	Type string `form:"type" binding:"required,oneof=pie bar line histogram boxplot scatter heatmap"`
	X    string `form:"x"`
	Y    string `form:"y"`
}

type APIChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type APIHistogramBin struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

type APINumericDescription struct {
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"`
	Min    float64  `json:"min"`
	P25    float64  `json:"25%"`
	Median float64  `json:"50%"`
	P75    float64  `json:"75%"`
	Max    float64  `json:"max"`
}

type APIGroupDescription struct {
	Group       string                `json:"group"`
	Description APINumericDescription `json:"description"`
}

type APIChart struct {
	Type         string                `json:"type"`
	X            string                `json:"x,omitempty"`
	Y            string                `json:"y,omitempty"`
	Series       []APIChartPoint       `json:"series,omitempty"`
	Bins         []APIHistogramBin     `json:"bins,omitempty"`
	Groups       []APIGroupDescription `json:"groups,omitempty"`
	Points       []map[string]any      `json:"points,omitempty"`
	Columns      []string              `json:"columns,omitempty"`
	Correlations [][]*float64          `json:"correlations,omitempty"`
}

func AdaptChartDto(chart models.Chart) APIChart {
	out := APIChart{
		Type:         string(chart.Type),
		X:            chart.X,
		Y:            chart.Y,
		Columns:      chart.Columns,
		Correlations: chart.Correlations,
	}
	if chart.Series != nil {
		out.Series = pure_utils.Map(chart.Series, func(p models.ChartPoint) APIChartPoint {
			return APIChartPoint{Label: p.Label, Value: p.Value}
		})
	}
	if chart.Bins != nil {
		out.Bins = pure_utils.Map(chart.Bins, func(b models.HistogramBin) APIHistogramBin {
			return APIHistogramBin{Label: b.Label, Low: b.Low, High: b.High, Count: b.Count}
		})
	}
	if chart.Groups != nil {
		out.Groups = pure_utils.Map(chart.Groups, func(g models.GroupDescription) APIGroupDescription {
			d := g.Description
			return APIGroupDescription{
				Group: g.Group,
				Description: APINumericDescription{
					Count:  d.Count,
					Mean:   d.Mean,
					Std:    d.Std,
					Min:    d.Min,
					P25:    d.P25,
					Median: d.Median,
					P75:    d.P75,
					Max:    d.Max,
				},
			}
		})
	}
	if chart.Points != nil {
		out.Points = AdaptRowsDto(chart.Points)
	}
	return out
}
